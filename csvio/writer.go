package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerflow/ledger"
)

// WriteSnapshot renders the final account views as CSV with header
// `client,available,held,total,locked`. Amounts carry at most four decimal
// places with trailing zeros trimmed.
func WriteSnapshot(w io.Writer, views []ledger.AccountView) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("csvio: write header: %w", err)
	}
	for _, v := range views {
		row := []string{
			strconv.FormatUint(uint64(v.ClientID), 10),
			FormatAmount(v.Available),
			FormatAmount(v.Held),
			FormatAmount(v.Total),
			strconv.FormatBool(v.Locked),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csvio: write client %d: %w", v.ClientID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csvio: flush: %w", err)
	}
	return nil
}

// FormatAmount renders d rounded to four decimal places, without trailing
// zeros in the fraction.
func FormatAmount(d decimal.Decimal) string {
	s := d.Round(4).String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
