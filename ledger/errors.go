package ledger

import "errors"

// Every error below is record-local: it rejects exactly one record without
// mutating shared state, and processing continues with the next record in
// that client's lane.
var (
	// ErrDuplicateTransactionID signals a transaction id that was already
	// consumed, regardless of whether its first sighting succeeded.
	ErrDuplicateTransactionID = errors.New("ledger: duplicate transaction id")
	// ErrAccountLocked signals a record targeting a charged-back account.
	ErrAccountLocked = errors.New("ledger: account locked")
	// ErrInsufficientFunds signals a debit or hold exceeding available funds.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
	// ErrUnknownTransaction signals a dispute-lifecycle record referencing a
	// transaction id with no applied deposit behind it.
	ErrUnknownTransaction = errors.New("ledger: unknown transaction")
	// ErrAlreadyDisputed signals a dispute against a deposit that is not in
	// the settled state.
	ErrAlreadyDisputed = errors.New("ledger: transaction already disputed")
	// ErrNotDisputed signals a resolve or chargeback against a deposit that
	// is not under dispute.
	ErrNotDisputed = errors.New("ledger: transaction not disputed")
	// ErrClientMismatch signals a dispute-lifecycle record whose client does
	// not own the referenced transaction.
	ErrClientMismatch = errors.New("ledger: transaction client mismatch")
	// ErrMalformedRecord signals a record with a missing, negative or
	// otherwise unusable payload.
	ErrMalformedRecord = errors.New("ledger: malformed record")

	// ErrEngineClosed signals a submit after the engine drained.
	ErrEngineClosed = errors.New("ledger: engine closed")
)
