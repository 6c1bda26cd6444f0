package ledger

import "github.com/shopspring/decimal"

// Kind enumerates the transaction record kinds accepted by the engine.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindDispute    Kind = "dispute"
	KindResolve    Kind = "resolve"
	KindChargeback Kind = "chargeback"
)

// Record is one decoded transaction record as produced by the input decoder.
// Amount is meaningful only when HasAmount is set; dispute, resolve and
// chargeback records reference an existing transaction and carry no amount.
type Record struct {
	Kind      Kind
	ClientID  uint16
	TxID      uint32
	Amount    decimal.Decimal
	HasAmount bool
}

// Account holds one client's balances. Total is always derived from
// Available and Held so the two can never drift apart.
type Account struct {
	ClientID  uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool
}

// Total returns the sum of available and held funds.
func (a *Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

// TxState is the dispute-lifecycle state of an applied deposit.
type TxState string

const (
	// TxSettled marks a deposit that is applied and not under dispute.
	TxSettled TxState = "settled"
	// TxDisputed marks a deposit whose funds are currently held.
	TxDisputed TxState = "disputed"
	// TxChargedBack is terminal; a charged-back deposit can never be
	// disputed again.
	TxChargedBack TxState = "charged_back"
)

// AppliedTx is a successfully applied deposit retained for dispute tracking.
// Entries are never deleted; the amount recorded here, not the current
// balance, drives every hold, release and removal.
type AppliedTx struct {
	TxID     uint32
	ClientID uint16
	Amount   decimal.Decimal
	State    TxState
}

// AccountView is one row of the final snapshot handed to the output reporter.
type AccountView struct {
	ClientID  uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}
