// Package dispatch implements Component E: the dispatcher, the single
// entry point a transport hands every decoded Request to. HandleRequest
// looks the procedure up in the registry, checks its activity-context
// precondition, binds arguments, submits the call to the continuation
// scheduler, and drives the scheduler until that specific call resolves,
// turning the final Outcome into a Response. Grounded on the teacher's
// grpc/validation.go syscall-boundary pattern (validate everything before
// invoking business logic) translated from gRPC status codes to the nine
// RPC error kinds in package rpcerr.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jeeves-cluster-organization/missionrpc/activity"
	"github.com/jeeves-cluster-organization/missionrpc/bind"
	"github.com/jeeves-cluster-organization/missionrpc/logging"
	"github.com/jeeves-cluster-organization/missionrpc/observability"
	"github.com/jeeves-cluster-organization/missionrpc/registry"
	"github.com/jeeves-cluster-organization/missionrpc/rpcerr"
	"github.com/jeeves-cluster-organization/missionrpc/rpcfacade"
	"github.com/jeeves-cluster-organization/missionrpc/sched"
	"github.com/jeeves-cluster-organization/missionrpc/wire"
)

// tracerName identifies this package's spans in the configured exporter.
const tracerName = "missionrpc/dispatch"

// Dispatcher wires the registry, binder and scheduler into the single
// HandleRequest entry point.
type Dispatcher struct {
	logger   logging.Logger
	registry *registry.Registry
	resolver wire.HandleResolver
	sched    *sched.Scheduler

	// tick serializes calls into sched.Tick so that, even with many
	// goroutines each driving their own HandleRequest call, only one
	// continuation ever runs at a time — the cooperative single-threaded
	// model spec.md §4.F describes.
	tick sync.Mutex

	waitersMu sync.Mutex
	waiters   map[string]chan sched.Outcome
}

// New creates a Dispatcher over reg, using resolver to turn ObjectRef
// handles into host objects and back (objects.Store satisfies
// wire.HandleResolver).
func New(logger logging.Logger, reg *registry.Registry, resolver wire.HandleResolver) *Dispatcher {
	d := &Dispatcher{
		logger:   logger,
		registry: reg,
		resolver: resolver,
		waiters:  make(map[string]chan sched.Outcome),
	}
	d.sched = sched.New(logger, d.onDone)
	return d
}

// clientScopedMinter is implemented by objects.Store: it mints a handle
// attributed to the client whose call produced it, so a later Disconnect
// evicts exactly the handles that call exclusively owns. wire.HandleResolver
// itself carries no client identity, so HandleRequest scopes it per call
// via resolverFor rather than handing sig.Invoke's encode step d.resolver
// directly.
type clientScopedMinter interface {
	HandleForClient(obj any, clientID string) uint64
}

// perClientResolver scopes HandleFor to one client id, falling back to the
// wrapped resolver's own HandleFor when it isn't a clientScopedMinter (for
// example a resolver under test that doesn't track ownership).
type perClientResolver struct {
	wire.HandleResolver
	minter   clientScopedMinter
	clientID string
}

func (r perClientResolver) HandleFor(obj any) uint64 {
	if r.minter != nil {
		return r.minter.HandleForClient(obj, r.clientID)
	}
	return r.HandleResolver.HandleFor(obj)
}

func (d *Dispatcher) resolverFor(clientID string) wire.HandleResolver {
	minter, _ := d.resolver.(clientScopedMinter)
	return perClientResolver{HandleResolver: d.resolver, minter: minter, clientID: clientID}
}

func (d *Dispatcher) onDone(c *sched.Continuation, outcome sched.Outcome) {
	d.waitersMu.Lock()
	ch, ok := d.waiters[c.ID]
	if ok {
		delete(d.waiters, c.ID)
	}
	d.waitersMu.Unlock()
	if ok {
		ch <- outcome
	}
}

// PendingContinuations reports how many continuations are queued across
// every client, for kernel.Kernel to republish as a gauge.
func (d *Dispatcher) PendingContinuations() int {
	return d.sched.PendingTotal()
}

// Disconnect cancels every continuation queued for clientID, per spec.md
// §5's cancellation-on-disconnect rule. Any HandleRequest call still
// blocked waiting for one of those continuations is unblocked with a
// ProcedureFailed outcome instead of hanging forever.
func (d *Dispatcher) Disconnect(clientID string) int {
	return d.sched.Disconnect(clientID)
}

// HandleRequest decodes nothing itself (rpcfacade already did that): it
// takes an already-parsed Request plus the caller's identity and current
// activity context, and returns the Response to frame back to the wire. It
// opens a span and records the dispatch-duration histogram and the
// requests-total counter around the call in dispatch (the components
// SPEC_FULL.md's observability table names as owning this boundary).
func (d *Dispatcher) HandleRequest(clientID string, currentContext activity.Context, req rpcfacade.Request) rpcfacade.Response {
	start := time.Now()
	_, span := observability.Tracer(tracerName).Start(context.Background(), req.Service+"."+req.Procedure)
	span.SetAttributes(
		attribute.String("rpc.service", req.Service),
		attribute.String("rpc.procedure", req.Procedure),
		attribute.String("rpc.client_id", clientID),
	)
	defer span.End()

	resp := d.dispatch(clientID, currentContext, req)

	status := "ok"
	if resp.Error != "" {
		status = "error"
		span.SetStatus(codes.Error, resp.Error)
	}
	observability.RecordRequest(req.Service, req.Procedure, status, time.Since(start).Seconds())
	return resp
}

// dispatch is HandleRequest's actual routing logic, split out so the
// tracing/metrics wrapper above has a single exit point to measure.
func (d *Dispatcher) dispatch(clientID string, currentContext activity.Context, req rpcfacade.Request) rpcfacade.Response {
	sig, err := d.registry.Lookup(req.Service, req.Procedure)
	if err != nil {
		return d.finalize(errorResponse(err))
	}

	if !sig.RequiredContext.Satisfies(currentContext) {
		return d.finalize(errorResponse(rpcerr.New(rpcerr.WrongContext, "%s.%s requires one of %v, caller is in %s", req.Service, req.Procedure, sig.RequiredContext, currentContext)))
	}

	resolver := d.resolverFor(clientID)

	args, err := bind.Bind(sig, req.Arguments, resolver)
	if err != nil {
		return d.finalize(errorResponse(err))
	}

	outcome := d.runToCompletion(clientID, sig, args)
	if outcome.Kind == sched.KindFailed {
		return d.finalize(errorResponse(outcome.Err))
	}

	// Void procedures short-circuit to an empty success response. Every
	// other declared return type must produce a value: a nil outcome for
	// an ObjectRef return still encodes as handle 0 (EncodeValue's own
	// null handling), but a nil outcome for any other return type is the
	// procedure's own bug, not a null reference.
	switch {
	case sig.ReturnType == nil:
		return d.finalize(rpcfacade.Response{})
	case outcome.Value == nil && sig.ReturnType.Kind != wire.KindObjectRef:
		return d.finalize(errorResponse(rpcerr.New(rpcerr.NullReturn, "%s.%s declared a %s return type but produced no value", req.Service, req.Procedure, sig.ReturnType.Kind)))
	}

	encoded, err := wire.EncodeValue(sig.ReturnType, outcome.Value, resolver)
	if err != nil {
		return d.finalize(errorResponse(err))
	}
	return d.finalize(rpcfacade.Response{Value: encoded})
}

// finalize stamps resp.Time with the moment the response left the
// dispatcher, per spec.md §3's "stamped by the host when the response is
// finalized."
func (d *Dispatcher) finalize(resp rpcfacade.Response) rpcfacade.Response {
	resp.Time = float64(time.Now().UnixNano()) / 1e9
	return resp
}

// runToCompletion submits one call and drives the shared scheduler —
// advancing whichever continuation is next in round-robin order, possibly
// belonging to a different client entirely — until this call's own
// Continuation reaches Done or Failed.
func (d *Dispatcher) runToCompletion(clientID string, sig *registry.ProcedureSignature, args []any) sched.Outcome {
	id := uuid.NewString()
	ch := make(chan sched.Outcome, 1)

	d.waitersMu.Lock()
	d.waiters[id] = ch
	d.waitersMu.Unlock()

	call := sched.New(id, clientID, func() sched.Outcome {
		return sig.Invoke(args)
	})
	call.Service = sig.Service
	call.Procedure = sig.Procedure
	d.sched.Submit(call)

	for {
		select {
		case outcome := <-ch:
			return outcome
		default:
		}

		d.tick.Lock()
		_, _, ok := d.sched.Tick()
		d.tick.Unlock()
		if !ok {
			// Another caller's Tick may have finished our call while we
			// waited for d.tick.
			select {
			case outcome := <-ch:
				return outcome
			default:
			}
			// Nothing left to run anywhere, including our own call —
			// only reachable if the client disconnected mid-call and
			// Disconnect dropped our continuation before it ran.
			d.waitersMu.Lock()
			delete(d.waiters, id)
			d.waitersMu.Unlock()
			return sched.Failed(rpcerr.New(rpcerr.ProcedureFailed, "call %s was cancelled before completion", id))
		}
	}
}

func errorResponse(err error) rpcfacade.Response {
	return rpcfacade.Response{Error: err.Error()}
}
