package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/inklab/sketchroom/internal/domain"
)

const (
	queueDepth  = 64
	defaultIdle = 5 * time.Minute
)

// Sequencer gives every room a single worker goroutine so that all
// state-mutating operations for that room run in one total order.
// Units submitted for the same room execute FIFO; different rooms run
// fully concurrently. Workers reap themselves after an idle period and
// are recreated transparently on the next submission.
type Sequencer struct {
	idleAfter time.Duration

	mu     sync.Mutex
	queues map[domain.RoomID]*roomQueue
}

type roomQueue struct {
	tasks chan func()

	mu      sync.Mutex
	pending int
	dead    bool

	// Touched only from the worker goroutine, via Unit.
	nextSeq uint64
	seeded  bool
}

func NewSequencer() *Sequencer {
	return &Sequencer{idleAfter: defaultIdle, queues: make(map[domain.RoomID]*roomQueue)}
}

// Unit is handed to a queued function and carries the per-room
// sequence counter. Its methods must only be called from inside the
// unit itself.
type Unit struct {
	q *roomQueue
}

// NextSeq returns the sequence number the next committed action should
// carry. On the room's first unit after activation the counter is
// seeded from seed, typically the last sequence present in the durable
// log. The counter does not advance until CommitSeq; a failed append
// therefore leaves no gap.
func (u *Unit) NextSeq(seed func() (uint64, error)) (uint64, error) {
	if !u.q.seeded {
		last, err := seed()
		if err != nil {
			return 0, err
		}
		u.q.nextSeq = last
		u.q.seeded = true
	}
	return u.q.nextSeq + 1, nil
}

// CommitSeq records seq as durably committed.
func (u *Unit) CommitSeq(seq uint64) {
	u.q.nextSeq = seq
}

// ResetSeq restarts the counter after the log is truncated.
func (u *Unit) ResetSeq() {
	u.q.nextSeq = 0
	u.q.seeded = true
}

// Do submits fn as a unit of work for the room and waits for it to
// run. A caller whose context expires while waiting stops waiting, but
// an already-queued unit still executes; a disconnect never cancels
// work ahead of it in the queue.
func (s *Sequencer) Do(ctx context.Context, roomID domain.RoomID, fn func(*Unit) error) error {
	for {
		q := s.queue(roomID)
		q.mu.Lock()
		if q.dead {
			q.mu.Unlock()
			continue
		}
		q.pending++
		q.mu.Unlock()

		done := make(chan error, 1)
		select {
		case q.tasks <- func() { done <- fn(&Unit{q: q}) }:
		case <-ctx.Done():
			q.mu.Lock()
			q.pending--
			q.mu.Unlock()
			return ctx.Err()
		}

		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Sequencer) queue(roomID domain.RoomID) *roomQueue {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[roomID]
	if !ok {
		q = &roomQueue{tasks: make(chan func(), queueDepth)}
		s.queues[roomID] = q
		go s.run(roomID, q)
		log.Debug().Str("module", "app.sequencer").Str("room", string(roomID)).Msg("worker started")
	}
	return q
}

func (s *Sequencer) run(roomID domain.RoomID, q *roomQueue) {
	idle := time.NewTimer(s.idleAfter)
	defer idle.Stop()
	for {
		select {
		case fn := <-q.tasks:
			fn()
			q.mu.Lock()
			q.pending--
			q.mu.Unlock()
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(s.idleAfter)
		case <-idle.C:
			s.mu.Lock()
			q.mu.Lock()
			if q.pending == 0 {
				q.dead = true
				delete(s.queues, roomID)
				q.mu.Unlock()
				s.mu.Unlock()
				log.Debug().Str("module", "app.sequencer").Str("room", string(roomID)).Msg("worker reaped")
				return
			}
			q.mu.Unlock()
			s.mu.Unlock()
			idle.Reset(s.idleAfter)
		}
	}
}
