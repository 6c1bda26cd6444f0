package ledger

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Scheduler routes records to one sequential execution lane per client while
// lanes for distinct clients run concurrently. It holds no business rules;
// it is purely the ordering boundary in front of the processor.
//
// Each lane is an unbounded FIFO mailbox drained by a single goroutine, so
// submission hands a record off without ever blocking on that lane's
// processing.
type Scheduler struct {
	apply func(Record)

	mu     sync.Mutex
	lanes  map[uint16]*lane
	closed bool

	group errgroup.Group
}

// NewScheduler returns a scheduler that invokes apply for every routed
// record, in submission order per client.
func NewScheduler(apply func(Record)) *Scheduler {
	return &Scheduler{
		apply: apply,
		lanes: make(map[uint16]*lane),
	}
}

// Submit routes rec to its client's lane, creating the lane on first sight
// of that client. It fails only after Drain has begun.
func (s *Scheduler) Submit(rec Record) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrEngineClosed
	}
	ln, ok := s.lanes[rec.ClientID]
	if !ok {
		ln = newLane()
		s.lanes[rec.ClientID] = ln
		s.group.Go(func() error {
			s.runLane(ln)
			return nil
		})
	}
	// Handoff stays under the scheduler lock so Drain cannot close the
	// lane between the closed check and the push. push never blocks.
	ln.push(rec)
	s.mu.Unlock()
	return nil
}

// Drain closes intake and blocks until every lane has applied all of its
// in-flight records. It is the barrier in front of the final snapshot.
func (s *Scheduler) Drain() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for _, ln := range s.lanes {
		ln.close()
	}
	s.mu.Unlock()

	return s.group.Wait()
}

func (s *Scheduler) runLane(ln *lane) {
	for {
		rec, ok := ln.pop()
		if !ok {
			return
		}
		s.apply(rec)
	}
}

// lane is one client's mailbox. wake has capacity one so a pending signal is
// never lost while the consumer is between pop attempts.
type lane struct {
	mu     sync.Mutex
	queue  []Record
	closed bool
	wake   chan struct{}
}

func newLane() *lane {
	return &lane{wake: make(chan struct{}, 1)}
}

func (l *lane) push(rec Record) {
	l.mu.Lock()
	l.queue = append(l.queue, rec)
	l.mu.Unlock()
	l.signal()
}

func (l *lane) close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.signal()
}

func (l *lane) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// pop blocks until a record is available or the lane is closed and empty.
func (l *lane) pop() (Record, bool) {
	for {
		l.mu.Lock()
		if len(l.queue) > 0 {
			rec := l.queue[0]
			l.queue = l.queue[1:]
			l.mu.Unlock()
			return rec, true
		}
		closed := l.closed
		l.mu.Unlock()
		if closed {
			return Record{}, false
		}
		<-l.wake
	}
}
