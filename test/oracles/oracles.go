// Package oracles checks engine-wide invariants over a drained snapshot.
package oracles

import (
	"fmt"

	"ledgerflow/ledger"
)

// Oracle names one invariant and the check behind it. Check returns a
// description of the first violating row, or "" when the invariant holds.
type Oracle struct {
	Name  string
	Check func(views []ledger.AccountView, stats ledger.Stats, submitted uint64) string
}

// All returns every snapshot oracle.
func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_non_negative_balances",
			Check: func(views []ledger.AccountView, _ ledger.Stats, _ uint64) string {
				for _, v := range views {
					if v.Available.IsNegative() || v.Held.IsNegative() {
						return fmt.Sprintf("client=%d available=%s held=%s", v.ClientID, v.Available, v.Held)
					}
				}
				return ""
			},
		},
		{
			Name: "O2_total_is_available_plus_held",
			Check: func(views []ledger.AccountView, _ ledger.Stats, _ uint64) string {
				for _, v := range views {
					if !v.Total.Equal(v.Available.Add(v.Held)) {
						return fmt.Sprintf("client=%d total=%s available=%s held=%s", v.ClientID, v.Total, v.Available, v.Held)
					}
				}
				return ""
			},
		},
		{
			Name: "O3_client_order_ascending",
			Check: func(views []ledger.AccountView, _ ledger.Stats, _ uint64) string {
				for i := 1; i < len(views); i++ {
					if views[i-1].ClientID >= views[i].ClientID {
						return fmt.Sprintf("index=%d client=%d follows client=%d", i, views[i].ClientID, views[i-1].ClientID)
					}
				}
				return ""
			},
		},
		{
			Name: "O4_every_record_accounted",
			Check: func(_ []ledger.AccountView, stats ledger.Stats, submitted uint64) string {
				if stats.Applied+stats.Rejected != submitted {
					return fmt.Sprintf("applied=%d rejected=%d submitted=%d", stats.Applied, stats.Rejected, submitted)
				}
				return ""
			},
		},
	}
}

// Run executes all oracles and returns the first failure (oracle name and
// violating row) or an empty name when every invariant holds.
func Run(views []ledger.AccountView, stats ledger.Stats, submitted uint64) (string, string) {
	for _, o := range All() {
		if row := o.Check(views, stats, submitted); row != "" {
			return o.Name, row
		}
	}
	return "", ""
}
