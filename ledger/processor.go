package ledger

// Processor is the transaction state machine. Given one record and access to
// the three stores it decides the effect and applies it. It keeps no
// per-record state of its own; correctness relies on same-client records
// arriving sequentially, which the scheduler guarantees.
type Processor struct {
	ids      *IdentifierLedger
	accounts *AccountStore
	disputes *DisputeIndex
}

// NewProcessor wires a processor over the shared stores.
func NewProcessor(ids *IdentifierLedger, accounts *AccountStore, disputes *DisputeIndex) *Processor {
	return &Processor{ids: ids, accounts: accounts, disputes: disputes}
}

// Apply executes one record. A returned error rejects exactly that record;
// shared state is never left half-mutated and later records are unaffected.
func (p *Processor) Apply(rec Record) error {
	switch rec.Kind {
	case KindDeposit:
		return p.deposit(rec)
	case KindWithdrawal:
		return p.withdraw(rec)
	case KindDispute:
		return p.dispute(rec)
	case KindResolve:
		return p.resolve(rec)
	case KindChargeback:
		return p.chargeback(rec)
	default:
		return ErrMalformedRecord
	}
}

// deposit mints a new identifier, credits available funds and records the
// applied deposit for later disputes. The identifier is consumed up front:
// a deposit rejected for a locked account or bad amount still burns its id.
func (p *Processor) deposit(rec Record) error {
	if !p.ids.Register(rec.TxID) {
		return ErrDuplicateTransactionID
	}
	if !rec.HasAmount || rec.Amount.IsNegative() {
		return ErrMalformedRecord
	}

	acct := p.accounts.GetOrCreate(rec.ClientID)
	if err := acct.CreditAvailable(rec.Amount); err != nil {
		return err
	}

	p.disputes.Put(&AppliedTx{
		TxID:     rec.TxID,
		ClientID: rec.ClientID,
		Amount:   rec.Amount,
		State:    TxSettled,
	})
	return nil
}

// withdraw mints a new identifier and debits available funds. Withdrawals
// are not disputable, so nothing is recorded in the dispute index.
func (p *Processor) withdraw(rec Record) error {
	if !p.ids.Register(rec.TxID) {
		return ErrDuplicateTransactionID
	}
	if !rec.HasAmount || rec.Amount.IsNegative() {
		return ErrMalformedRecord
	}

	acct := p.accounts.GetOrCreate(rec.ClientID)
	return acct.DebitAvailable(rec.Amount)
}

// dispute moves the deposited amount from available to held. The amount
// comes from the applied deposit, never from the incoming record, so later
// account activity cannot skew it.
func (p *Processor) dispute(rec Record) error {
	tx, ok := p.disputes.Get(rec.TxID)
	if !ok {
		return ErrUnknownTransaction
	}
	if tx.ClientID != rec.ClientID {
		return ErrClientMismatch
	}
	if tx.State != TxSettled {
		return ErrAlreadyDisputed
	}

	acct := p.accounts.GetOrCreate(rec.ClientID)
	if err := acct.HoldFromAvailable(tx.Amount); err != nil {
		return err
	}
	tx.State = TxDisputed
	return nil
}

// resolve releases the held amount back to available and returns the deposit
// to the settled state, after which it may be disputed again.
func (p *Processor) resolve(rec Record) error {
	tx, ok := p.disputes.Get(rec.TxID)
	if !ok {
		return ErrUnknownTransaction
	}
	if tx.ClientID != rec.ClientID {
		return ErrClientMismatch
	}
	if tx.State != TxDisputed {
		return ErrNotDisputed
	}

	acct := p.accounts.GetOrCreate(rec.ClientID)
	if err := acct.ReleaseHeldToAvailable(tx.Amount); err != nil {
		return err
	}
	tx.State = TxSettled
	return nil
}

// chargeback withdraws the held amount and freezes the account. The deposit
// enters its terminal state and can never be disputed again.
func (p *Processor) chargeback(rec Record) error {
	tx, ok := p.disputes.Get(rec.TxID)
	if !ok {
		return ErrUnknownTransaction
	}
	if tx.ClientID != rec.ClientID {
		return ErrClientMismatch
	}
	if tx.State != TxDisputed {
		return ErrNotDisputed
	}

	acct := p.accounts.GetOrCreate(rec.ClientID)
	if err := acct.RemoveHeld(tx.Amount); err != nil {
		return err
	}
	acct.Lock()
	tx.State = TxChargedBack
	return nil
}
