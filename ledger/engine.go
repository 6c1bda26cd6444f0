package ledger

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// Engine is the composition root. It owns the account store, dispute index,
// identifier ledger and scheduler, and exposes Submit, Drain and Snapshot.
type Engine struct {
	ids       *IdentifierLedger
	accounts  *AccountStore
	disputes  *DisputeIndex
	processor *Processor
	scheduler *Scheduler
	log       *zap.Logger

	applied  atomic.Uint64
	rejected atomic.Uint64
}

// Stats counts record outcomes for a run.
type Stats struct {
	Applied  uint64
	Rejected uint64
}

// New builds an engine logging through log. A nil logger is replaced with a
// no-op one.
func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}

	e := &Engine{
		ids:      NewIdentifierLedger(),
		accounts: NewAccountStore(),
		disputes: NewDisputeIndex(),
		log:      log,
	}
	e.processor = NewProcessor(e.ids, e.accounts, e.disputes)
	e.scheduler = NewScheduler(e.apply)
	return e
}

// Submit routes one record to its client's lane. Processing failures are
// record-local and surface only in the log and the stats; Submit itself
// fails only when the engine has already drained.
func (e *Engine) Submit(rec Record) error {
	return e.scheduler.Submit(rec)
}

// ReportMalformed registers a record the input decoder could not even
// decode. It has the same effect on the run as a failed precondition: one
// rejection, no state change.
func (e *Engine) ReportMalformed(line int, err error) {
	e.rejected.Add(1)
	e.log.Warn("record rejected",
		zap.Int("line", line),
		zap.NamedError("reason", ErrMalformedRecord),
		zap.Error(err),
	)
}

// Drain closes intake and waits until every lane has finished its in-flight
// records. Snapshot must not be called before Drain returns nil; the drain
// is the barrier that keeps partially-applied records out of the snapshot.
func (e *Engine) Drain(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- e.scheduler.Drain()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// Snapshot returns the final account state, ordered by client id ascending.
func (e *Engine) Snapshot() []AccountView {
	return e.accounts.Views()
}

// Stats reports how many records were applied and rejected so far.
func (e *Engine) Stats() Stats {
	return Stats{
		Applied:  e.applied.Load(),
		Rejected: e.rejected.Load(),
	}
}

func (e *Engine) apply(rec Record) {
	if err := e.processor.Apply(rec); err != nil {
		e.rejected.Add(1)
		e.log.Warn("record rejected",
			zap.String("kind", string(rec.Kind)),
			zap.Uint16("client", rec.ClientID),
			zap.Uint32("tx", rec.TxID),
			zap.Error(err),
		)
		return
	}
	e.applied.Add(1)
}
