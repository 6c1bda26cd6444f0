package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newProcessor() *Processor {
	return NewProcessor(NewIdentifierLedger(), NewAccountStore(), NewDisputeIndex())
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func deposit(client uint16, tx uint32, amount string) Record {
	return Record{Kind: KindDeposit, ClientID: client, TxID: tx, Amount: amt(amount), HasAmount: true}
}

func withdrawal(client uint16, tx uint32, amount string) Record {
	return Record{Kind: KindWithdrawal, ClientID: client, TxID: tx, Amount: amt(amount), HasAmount: true}
}

func lifecycle(kind Kind, client uint16, tx uint32) Record {
	return Record{Kind: kind, ClientID: client, TxID: tx}
}

func requireBalances(t *testing.T, p *Processor, client uint16, available, held string, locked bool) {
	t.Helper()
	acct := p.accounts.GetOrCreate(client)
	require.True(t, acct.Available.Equal(amt(available)), "available = %s, want %s", acct.Available, available)
	require.True(t, acct.Held.Equal(amt(held)), "held = %s, want %s", acct.Held, held)
	require.True(t, acct.Total().Equal(amt(available).Add(amt(held))))
	require.Equal(t, locked, acct.Locked)
}

func TestDepositCreatesAccount(t *testing.T) {
	p := newProcessor()

	require.NoError(t, p.Apply(deposit(1, 1, "5")))
	requireBalances(t, p, 1, "5", "0", false)
}

func TestDepositThenWithdrawal(t *testing.T) {
	p := newProcessor()

	require.NoError(t, p.Apply(deposit(1, 1, "5")))
	require.NoError(t, p.Apply(withdrawal(1, 2, "3")))
	requireBalances(t, p, 1, "2", "0", false)
}

func TestWithdrawalInsufficientFunds(t *testing.T) {
	p := newProcessor()

	require.NoError(t, p.Apply(deposit(1, 1, "5")))
	require.ErrorIs(t, p.Apply(withdrawal(1, 2, "10")), ErrInsufficientFunds)
	requireBalances(t, p, 1, "5", "0", false)
}

func TestDisputeChargebackLocksAccount(t *testing.T) {
	p := newProcessor()

	require.NoError(t, p.Apply(deposit(1, 1, "5")))
	require.NoError(t, p.Apply(lifecycle(KindDispute, 1, 1)))
	requireBalances(t, p, 1, "0", "5", false)

	require.NoError(t, p.Apply(lifecycle(KindChargeback, 1, 1)))
	requireBalances(t, p, 1, "0", "0", true)

	// Locked accounts take nothing further; the snapshot stays frozen.
	require.ErrorIs(t, p.Apply(deposit(1, 3, "100")), ErrAccountLocked)
	requireBalances(t, p, 1, "0", "0", true)
}

func TestDuplicateTransactionID(t *testing.T) {
	p := newProcessor()

	require.NoError(t, p.Apply(deposit(1, 1, "5")))
	require.ErrorIs(t, p.Apply(deposit(1, 1, "5")), ErrDuplicateTransactionID)
	requireBalances(t, p, 1, "5", "0", false)
}

func TestDuplicateRejectionIsIdempotent(t *testing.T) {
	p := newProcessor()
	require.NoError(t, p.Apply(deposit(1, 7, "5")))

	// Any kind, any amount: a consumed identifier stays consumed.
	retries := []Record{
		deposit(1, 7, "5"),
		deposit(2, 7, "99"),
		withdrawal(1, 7, "1"),
	}
	for _, rec := range retries {
		require.ErrorIs(t, p.Apply(rec), ErrDuplicateTransactionID)
	}
	requireBalances(t, p, 1, "5", "0", false)
}

func TestRejectedWithdrawalStillConsumesID(t *testing.T) {
	p := newProcessor()

	require.NoError(t, p.Apply(deposit(1, 1, "5")))
	require.ErrorIs(t, p.Apply(withdrawal(1, 2, "10")), ErrInsufficientFunds)

	// tx 2 failed but its identifier is burned; no resurrection.
	require.ErrorIs(t, p.Apply(withdrawal(1, 2, "1")), ErrDuplicateTransactionID)
	require.ErrorIs(t, p.Apply(deposit(1, 2, "1")), ErrDuplicateTransactionID)
	requireBalances(t, p, 1, "5", "0", false)
}

func TestDisputeResolveRoundTrip(t *testing.T) {
	p := newProcessor()

	require.NoError(t, p.Apply(deposit(1, 1, "5")))
	require.NoError(t, p.Apply(deposit(1, 2, "3")))
	require.NoError(t, p.Apply(lifecycle(KindDispute, 1, 1)))
	requireBalances(t, p, 1, "3", "5", false)

	require.NoError(t, p.Apply(lifecycle(KindResolve, 1, 1)))
	requireBalances(t, p, 1, "8", "0", false)

	// A resolved deposit is settled again and may be re-disputed.
	require.NoError(t, p.Apply(lifecycle(KindDispute, 1, 1)))
	requireBalances(t, p, 1, "3", "5", false)
}

func TestDisputeFailures(t *testing.T) {
	p := newProcessor()
	require.NoError(t, p.Apply(deposit(1, 1, "5")))
	require.NoError(t, p.Apply(deposit(2, 2, "5")))

	tests := []struct {
		name string
		rec  Record
		want error
	}{
		{"unknown transaction", lifecycle(KindDispute, 1, 99), ErrUnknownTransaction},
		{"client mismatch", lifecycle(KindDispute, 2, 1), ErrClientMismatch},
		{"resolve before dispute", lifecycle(KindResolve, 1, 1), ErrNotDisputed},
		{"chargeback before dispute", lifecycle(KindChargeback, 1, 1), ErrNotDisputed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, p.Apply(tt.rec), tt.want)
		})
	}
}

func TestDoubleDispute(t *testing.T) {
	p := newProcessor()

	require.NoError(t, p.Apply(deposit(1, 1, "5")))
	require.NoError(t, p.Apply(lifecycle(KindDispute, 1, 1)))
	require.ErrorIs(t, p.Apply(lifecycle(KindDispute, 1, 1)), ErrAlreadyDisputed)
	requireBalances(t, p, 1, "0", "5", false)
}

func TestChargedBackDepositIsTerminal(t *testing.T) {
	p := newProcessor()

	require.NoError(t, p.Apply(deposit(1, 1, "5")))
	require.NoError(t, p.Apply(lifecycle(KindDispute, 1, 1)))
	require.NoError(t, p.Apply(lifecycle(KindChargeback, 1, 1)))

	// The applied deposit is retained with its terminal state; even on an
	// unlocked account the id could never re-enter the lifecycle.
	tx, ok := p.disputes.Get(1)
	require.True(t, ok)
	require.Equal(t, TxChargedBack, tx.State)

	require.ErrorIs(t, p.Apply(lifecycle(KindResolve, 1, 1)), ErrNotDisputed)
	require.ErrorIs(t, p.Apply(lifecycle(KindChargeback, 1, 1)), ErrNotDisputed)
}

func TestDisputeExceedingAvailableFunds(t *testing.T) {
	p := newProcessor()

	require.NoError(t, p.Apply(deposit(1, 1, "5")))
	require.NoError(t, p.Apply(withdrawal(1, 2, "4")))

	// The deposited 5 cannot be held out of an available balance of 1.
	require.ErrorIs(t, p.Apply(lifecycle(KindDispute, 1, 1)), ErrInsufficientFunds)
	requireBalances(t, p, 1, "1", "0", false)
}

func TestMalformedAmounts(t *testing.T) {
	p := newProcessor()

	missing := Record{Kind: KindDeposit, ClientID: 1, TxID: 1}
	require.ErrorIs(t, p.Apply(missing), ErrMalformedRecord)

	negative := deposit(1, 2, "-3")
	require.ErrorIs(t, p.Apply(negative), ErrMalformedRecord)

	// Both rejections consumed their identifiers at first sight.
	require.ErrorIs(t, p.Apply(deposit(1, 1, "3")), ErrDuplicateTransactionID)
	require.ErrorIs(t, p.Apply(deposit(1, 2, "3")), ErrDuplicateTransactionID)
	requireBalances(t, p, 1, "0", "0", false)
}

func TestLifecycleRecordsDoNotMintIdentifiers(t *testing.T) {
	p := newProcessor()

	require.ErrorIs(t, p.Apply(lifecycle(KindDispute, 1, 42)), ErrUnknownTransaction)

	// The failed dispute referenced id 42 without consuming it.
	require.NoError(t, p.Apply(deposit(1, 42, "5")))
	requireBalances(t, p, 1, "5", "0", false)
}

func TestLockedAccountRejectsEveryKind(t *testing.T) {
	p := newProcessor()

	require.NoError(t, p.Apply(deposit(1, 1, "5")))
	require.NoError(t, p.Apply(deposit(1, 2, "5")))
	require.NoError(t, p.Apply(lifecycle(KindDispute, 1, 1)))
	require.NoError(t, p.Apply(lifecycle(KindDispute, 1, 2)))
	require.NoError(t, p.Apply(lifecycle(KindChargeback, 1, 1)))
	requireBalances(t, p, 1, "0", "5", true)

	// tx 2 is still disputed, but the lock wins over resolve and chargeback.
	require.ErrorIs(t, p.Apply(lifecycle(KindResolve, 1, 2)), ErrAccountLocked)
	require.ErrorIs(t, p.Apply(lifecycle(KindChargeback, 1, 2)), ErrAccountLocked)
	require.ErrorIs(t, p.Apply(deposit(1, 3, "1")), ErrAccountLocked)
	require.ErrorIs(t, p.Apply(withdrawal(1, 4, "1")), ErrAccountLocked)
	requireBalances(t, p, 1, "0", "5", true)
}

func TestFractionalAmountsStayExact(t *testing.T) {
	p := newProcessor()

	for i := uint32(0); i < 1000; i++ {
		require.NoError(t, p.Apply(deposit(1, i, "0.0001")))
	}
	requireBalances(t, p, 1, "0.1", "0", false)
}
