package sched

import (
	"sync"

	"github.com/jeeves-cluster-organization/missionrpc/logging"
	"github.com/jeeves-cluster-organization/missionrpc/observability"
	"github.com/jeeves-cluster-organization/missionrpc/recovery"
)

// CompletionHandler is notified exactly once per submitted continuation,
// when it finally resolves to Done or Failed. A continuation that keeps
// yielding calls no handler until its last step.
type CompletionHandler func(c *Continuation, outcome Outcome)

// Scheduler holds one FIFO queue of pending continuations per client and
// advances them cooperatively: Tick pops and runs exactly one continuation
// from one client's queue, putting it back at the front of that same
// client's queue if it yields, so later continuations from that client
// wait behind it. There is no ordering guarantee across
// different clients' queues; Tick visits clients round-robin.
type Scheduler struct {
	logger logging.Logger
	onDone CompletionHandler

	mu     sync.Mutex
	queues map[string][]*Continuation
	order  []string // client ids, round-robin cursor order
	cursor int
}

// New creates an empty Scheduler. onDone, if non-nil, is invoked whenever
// a continuation reaches Done or Failed.
func New(logger logging.Logger, onDone CompletionHandler) *Scheduler {
	return &Scheduler{
		logger: logger,
		onDone: onDone,
		queues: make(map[string][]*Continuation),
	}
}

// Submit enqueues c at the back of its client's FIFO.
func (s *Scheduler) Submit(c *Continuation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.queues[c.ClientID]; !ok {
		s.order = append(s.order, c.ClientID)
	}
	s.queues[c.ClientID] = append(s.queues[c.ClientID], c)
	if s.logger != nil {
		s.logger.Debug("continuation_submitted", "continuation_id", c.ID, "client_id", c.ClientID)
	}
}

// Tick runs one continuation to one step of progress and reports what
// happened, or returns ok=false if every queue is empty. Tick visits
// clients round-robin so no single client's backlog can starve another's,
// while preserving strict FIFO order within each client's own queue.
func (s *Scheduler) Tick() (outcome Outcome, c *Continuation, ok bool) {
	s.mu.Lock()
	c = s.popNextLocked()
	s.mu.Unlock()
	if c == nil {
		return Outcome{}, nil, false
	}

	result, err := recovery.SafeExecuteWithResult(s.logger, "continuation.run", func() (Outcome, error) {
		return c.Run(), nil
	})
	if err != nil {
		result = Failed(err)
	}

	switch result.Kind {
	case KindYield:
		// A continuation's identity (ID, ClientID, Service, Procedure)
		// survives a yield even though its Step is replaced — callers
		// correlate a call with its continuation by ID across however
		// many yields it takes to finish, so only c.run may change here.
		resumed := &Continuation{ID: c.ID, ClientID: c.ClientID, Service: c.Service, Procedure: c.Procedure, run: result.Next.run}
		s.mu.Lock()
		if _, ok := s.queues[c.ClientID]; !ok {
			s.order = append(s.order, c.ClientID)
		}
		s.queues[c.ClientID] = append([]*Continuation{resumed}, s.queues[c.ClientID]...)
		s.mu.Unlock()
		observability.RecordYield(c.Service, c.Procedure)
		if s.logger != nil {
			s.logger.Debug("continuation_yielded", "continuation_id", c.ID, "client_id", c.ClientID)
		}
	case KindDone, KindFailed:
		if s.onDone != nil {
			s.onDone(c, result)
		}
	}
	return result, c, true
}

// popNextLocked advances the round-robin cursor to the next non-empty
// client queue and pops its front continuation. Empty queues are pruned
// from s.order as they're encountered.
func (s *Scheduler) popNextLocked() *Continuation {
	for len(s.order) > 0 {
		if s.cursor >= len(s.order) {
			s.cursor = 0
		}
		clientID := s.order[s.cursor]
		q := s.queues[clientID]
		if len(q) == 0 {
			s.order = append(s.order[:s.cursor], s.order[s.cursor+1:]...)
			delete(s.queues, clientID)
			continue
		}
		c := q[0]
		s.queues[clientID] = q[1:]
		s.cursor++
		return c
	}
	return nil
}

// Pending reports how many continuations are queued for clientID.
func (s *Scheduler) Pending(clientID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[clientID])
}

// PendingTotal reports how many continuations are queued across every
// client, for the active-continuations gauge.
func (s *Scheduler) PendingTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, q := range s.queues {
		total += len(q)
	}
	return total
}

// Disconnect drops every continuation queued for clientID without
// running it, per spec.md §5's cancellation-on-disconnect rule.
func (s *Scheduler) Disconnect(clientID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[clientID]
	if !ok {
		return 0
	}
	n := len(q)
	delete(s.queues, clientID)
	for i, id := range s.order {
		if id == clientID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.logger != nil && n > 0 {
		s.logger.Debug("continuations_dropped", "client_id", clientID, "count", n)
	}
	return n
}
