package ledger

import "sync"

// IdentifierLedger records every transaction identifier ever seen, valid or
// rejected, so an identifier can never be reused. It is the only structure
// shared across client lanes, hence the mutex.
type IdentifierLedger struct {
	mu   sync.Mutex
	seen map[uint32]struct{}
}

// NewIdentifierLedger returns an empty identifier ledger.
func NewIdentifierLedger() *IdentifierLedger {
	return &IdentifierLedger{seen: make(map[uint32]struct{})}
}

// Register consumes txID. It returns true on first sight and false when the
// identifier was already consumed. Registration is atomic with respect to
// concurrent attempts on the same identifier, and permanent: a consumed
// identifier is rejected forever, independent of how its first sighting
// turned out.
func (l *IdentifierLedger) Register(txID uint32) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[txID]; ok {
		return false
	}
	l.seen[txID] = struct{}{}
	return true
}

// Seen reports whether txID has been registered.
func (l *IdentifierLedger) Seen(txID uint32) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.seen[txID]
	return ok
}
