package ledger

import "sync"

// DisputeIndex exclusively owns the applied deposits that dispute, resolve
// and chargeback records reference by transaction id. Entries are never
// deleted: a charged-back deposit stays behind with its terminal state so the
// same id cannot enter the dispute lifecycle again.
//
// The map is guarded because deposits for different clients land from
// different lanes; a single AppliedTx is only ever mutated by the lane owning
// its client.
type DisputeIndex struct {
	mu      sync.RWMutex
	applied map[uint32]*AppliedTx
}

// NewDisputeIndex returns an empty dispute index.
func NewDisputeIndex() *DisputeIndex {
	return &DisputeIndex{applied: make(map[uint32]*AppliedTx)}
}

// Put records a freshly applied deposit. The identifier ledger guarantees
// txID uniqueness before Put is reached.
func (d *DisputeIndex) Put(tx *AppliedTx) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applied[tx.TxID] = tx
}

// Get looks up the applied deposit for txID.
func (d *DisputeIndex) Get(txID uint32) (*AppliedTx, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tx, ok := d.applied[txID]
	return tx, ok
}
