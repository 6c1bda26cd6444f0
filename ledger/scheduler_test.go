package ledger

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchedulerPreservesPerClientOrder(t *testing.T) {
	var mu sync.Mutex
	got := make(map[uint16][]uint32)

	s := NewScheduler(func(rec Record) {
		mu.Lock()
		got[rec.ClientID] = append(got[rec.ClientID], rec.TxID)
		mu.Unlock()
	})

	const perClient = 500
	clients := []uint16{1, 2, 3, 4}
	tx := uint32(0)
	// Single producer interleaving clients, as the input decoder would.
	for i := 0; i < perClient; i++ {
		for _, c := range clients {
			require.NoError(t, s.Submit(Record{Kind: KindDeposit, ClientID: c, TxID: tx}))
			tx++
		}
	}
	require.NoError(t, s.Drain())

	for _, c := range clients {
		seq := got[c]
		require.Len(t, seq, perClient)
		for i := 1; i < len(seq); i++ {
			require.Less(t, seq[i-1], seq[i], "client %d applied out of order", c)
		}
	}
}

func TestSchedulerRejectsSubmitAfterDrain(t *testing.T) {
	s := NewScheduler(func(Record) {})
	require.NoError(t, s.Submit(Record{ClientID: 1}))
	require.NoError(t, s.Drain())

	require.ErrorIs(t, s.Submit(Record{ClientID: 1}), ErrEngineClosed)
}

func TestSchedulerDrainIsABarrier(t *testing.T) {
	var applied atomic.Int64
	s := NewScheduler(func(Record) { applied.Add(1) })

	const n = 2000
	for i := 0; i < n; i++ {
		require.NoError(t, s.Submit(Record{ClientID: uint16(i % 8), TxID: uint32(i)}))
	}
	require.NoError(t, s.Drain())

	require.Equal(t, int64(n), applied.Load())
}

func TestSchedulerDrainTwice(t *testing.T) {
	s := NewScheduler(func(Record) {})
	require.NoError(t, s.Submit(Record{ClientID: 1}))
	require.NoError(t, s.Drain())
	require.NoError(t, s.Drain())
}
