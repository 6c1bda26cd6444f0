// Package actors provides concurrent workload goroutines for stress-testing
// the ledger engine. Each actor loops until its stop channel closes,
// submitting records that exercise one slice of the state machine.
package actors

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"ledgerflow/ledger"
)

// Submitter is the slice of the engine the actors drive.
type Submitter interface {
	Submit(rec ledger.Record) error
}

// TxSource hands out globally unique transaction ids across all actors.
type TxSource struct {
	next atomic.Uint32
}

// Next returns a fresh transaction id.
func (s *TxSource) Next() uint32 {
	return s.next.Add(1)
}

// Used returns how many ids have been handed out so far.
func (s *TxSource) Used() uint32 {
	return s.next.Load()
}

// Depositor streams deposits for a band of clients.
func Depositor(ctx context.Context, eng Submitter, txs *TxSource, clients []uint16, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		rec := ledger.Record{
			Kind:      ledger.KindDeposit,
			ClientID:  clients[rand.Intn(len(clients))],
			TxID:      txs.Next(),
			Amount:    decimal.New(int64(1+rand.Intn(10000)), -4),
			HasAmount: true,
		}
		if err := eng.Submit(rec); err != nil {
			return fmt.Errorf("depositor submit: %w", err)
		}
		time.Sleep(time.Duration(rand.Intn(3)) * time.Millisecond)
	}
}

// Withdrawer streams withdrawals, most of which will be rejected for
// insufficient funds early in the run.
func Withdrawer(ctx context.Context, eng Submitter, txs *TxSource, clients []uint16, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		rec := ledger.Record{
			Kind:      ledger.KindWithdrawal,
			ClientID:  clients[rand.Intn(len(clients))],
			TxID:      txs.Next(),
			Amount:    decimal.New(int64(1+rand.Intn(20000)), -4),
			HasAmount: true,
		}
		if err := eng.Submit(rec); err != nil {
			return fmt.Errorf("withdrawer submit: %w", err)
		}
		time.Sleep(time.Duration(rand.Intn(3)) * time.Millisecond)
	}
}

// Disputer fires dispute, resolve and chargeback records against random
// previously minted ids; most are rejected, some land and lock accounts.
func Disputer(ctx context.Context, eng Submitter, txs *TxSource, clients []uint16, stop <-chan struct{}) error {
	kinds := []ledger.Kind{ledger.KindDispute, ledger.KindResolve, ledger.KindChargeback}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		used := txs.Used()
		if used == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		rec := ledger.Record{
			Kind:     kinds[rand.Intn(len(kinds))],
			ClientID: clients[rand.Intn(len(clients))],
			TxID:     1 + uint32(rand.Intn(int(used))),
		}
		if err := eng.Submit(rec); err != nil {
			return fmt.Errorf("disputer submit: %w", err)
		}
		time.Sleep(time.Duration(1+rand.Intn(5)) * time.Millisecond)
	}
}

// Duplicator re-submits ids handed out earlier. Whoever loses the race for
// an id is rejected as a duplicate; balances must stay coherent either way.
func Duplicator(ctx context.Context, eng Submitter, txs *TxSource, clients []uint16, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		used := txs.Used()
		if used == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		rec := ledger.Record{
			Kind:      ledger.KindDeposit,
			ClientID:  clients[rand.Intn(len(clients))],
			TxID:      1 + uint32(rand.Intn(int(used))),
			Amount:    decimal.New(int64(1+rand.Intn(10000)), -4),
			HasAmount: true,
		}
		if err := eng.Submit(rec); err != nil {
			return fmt.Errorf("duplicator submit: %w", err)
		}
		time.Sleep(time.Duration(2+rand.Intn(6)) * time.Millisecond)
	}
}
