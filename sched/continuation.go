// Package sched implements Component F: the cooperative continuation
// scheduler. A procedure invocation either completes in one step (Done or
// Failed) or yields control back to the scheduler with a Continuation that
// resumes the same logical call later from wherever it left off. Yielding
// is a first-class outcome, never an error (spec.md §9's redesign note),
// and scheduling is strictly FIFO within one client's own queue — there is
// no ordering guarantee between different clients' continuations.
package sched

// OutcomeKind distinguishes the three ways a single scheduling step can
// end.
type OutcomeKind int

const (
	// KindDone means the call finished with a value.
	KindDone OutcomeKind = iota
	// KindFailed means the call finished with an error.
	KindFailed
	// KindYield means the call is not finished; Next must be re-run on a
	// later tick to make further progress.
	KindYield
)

// Outcome is the result of running one step of a Continuation.
type Outcome struct {
	Kind  OutcomeKind
	Value any
	Err   error
	Next  *Continuation
}

// Done builds a completed-with-value Outcome.
func Done(v any) Outcome { return Outcome{Kind: KindDone, Value: v} }

// Failed builds a completed-with-error Outcome.
func Failed(err error) Outcome { return Outcome{Kind: KindFailed, Err: err} }

// Yield builds a not-yet-finished Outcome that must be resumed via next.
func Yield(next *Continuation) Outcome { return Outcome{Kind: KindYield, Next: next} }

// Step runs one unit of work and reports how the call ended or how to
// resume it. A Step closure owns whatever partial state it needs to
// resume — the scheduler itself is stateless about what's inside a
// Continuation.
type Step func() Outcome

// Continuation is one resumable unit of scheduled work, bound to the
// client that submitted it and carrying the closure (Step) that performs
// the next slice of work when the scheduler runs it.
type Continuation struct {
	// ID identifies this continuation; dispatch.Dispatcher correlates a
	// call with its completion by ID. Assigned by the caller (the
	// dispatcher uses a uuid per original request).
	ID string
	// ClientID is the owning client's connection identity; continuations
	// from the same client always run in submission order relative to
	// each other.
	ClientID string

	// Service and Procedure name the call this continuation belongs to,
	// for yield metrics; empty for continuations built directly with New
	// rather than through dispatch.Dispatcher.runToCompletion.
	Service   string
	Procedure string

	run Step
}

// New wraps step into a Continuation for clientID.
func New(id, clientID string, step Step) *Continuation {
	return &Continuation{ID: id, ClientID: clientID, run: step}
}

// Run executes one scheduling step.
func (c *Continuation) Run() Outcome {
	return c.run()
}
