// Package kernel is the composition root: it wires the service registry,
// object store, argument binder, continuation scheduler and dispatcher
// into one Kernel, and adds the concerns that sit above the core RPC
// components — client lifecycle, per-client rate limiting and an event
// stream for host-level telemetry. Grounded on the teacher's
// kernel/kernel.go Kernel type, which plays the analogous composition-root
// role over its own LifecycleManager/ResourceTracker/RateLimiter/
// ServiceRegistry quartet.
package kernel

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jeeves-cluster-organization/missionrpc/activity"
	"github.com/jeeves-cluster-organization/missionrpc/dispatch"
	"github.com/jeeves-cluster-organization/missionrpc/logging"
	"github.com/jeeves-cluster-organization/missionrpc/objects"
	"github.com/jeeves-cluster-organization/missionrpc/observability"
	"github.com/jeeves-cluster-organization/missionrpc/registry"
	"github.com/jeeves-cluster-organization/missionrpc/rpcerr"
	"github.com/jeeves-cluster-organization/missionrpc/rpcfacade"
)

// Kernel is the single host-facing surface a transport drives: Connect a
// client, hand it requests via Call, Disconnect it when the connection
// closes.
type Kernel struct {
	logger   logging.Logger
	Registry *registry.Registry
	Store    *objects.Store
	dispatch *dispatch.Dispatcher
	limiter  *RateLimiter
	events   eventBus

	connectedClients atomic.Int64
}

// New builds a Kernel with its own Registry and Store, ready for services
// to be registered against Registry before the first client connects.
func New(logger logging.Logger, limits RateLimitConfig) *Kernel {
	store := objects.New(logger)
	reg := registry.New(logger)
	k := &Kernel{
		logger:   logger,
		Registry: reg,
		Store:    store,
		dispatch: dispatch.New(logger, reg, store),
		limiter:  NewRateLimiter(limits),
	}
	return k
}

// OnEvent registers a handler for the kernel's event stream.
func (k *Kernel) OnEvent(h EventHandler) {
	k.events.on(h)
}

// Connect announces a new client to the kernel. Transports call this once
// per accepted connection, before routing any of its requests to Call.
func (k *Kernel) Connect(clientID string) {
	k.events.emit(newEvent(EventClientConnected, clientID, nil))
	observability.SetConnectedClients(int(k.connectedClients.Add(1)))
}

// Disconnect tears down everything the kernel was holding on clientID's
// behalf: its queued continuations are cancelled, its exclusively-owned
// object handles are released, and its rate-limit window is forgotten.
func (k *Kernel) Disconnect(clientID string) {
	dropped := k.dispatch.Disconnect(clientID)
	released := k.Store.ReleaseClient(clientID)
	k.limiter.Forget(clientID)
	k.events.emit(newEvent(EventClientDisconnected, clientID, map[string]any{
		"continuations_dropped": dropped,
		"handles_released":      released,
	}))
	observability.SetConnectedClients(int(k.connectedClients.Add(-1)))
	observability.SetObjectStoreSize(k.Store.Len())
	observability.SetActiveContinuations(k.dispatch.PendingContinuations())
}

// Call admits one request from clientID, subject to the rate limiter, and
// drives it to completion through the dispatcher.
func (k *Kernel) Call(clientID string, currentContext activity.Context, req rpcfacade.Request) rpcfacade.Response {
	if !k.limiter.Allow(clientID, time.Now()) {
		return rpcfacade.Response{
			Time:  float64(time.Now().UnixNano()) / 1e9,
			Error: rpcerr.New(rpcerr.ProcedureFailed, "rate limit exceeded for client %s", clientID).Error(),
		}
	}
	k.events.emit(newEvent(EventContinuationCreated, clientID, map[string]any{
		"service":   req.Service,
		"procedure": req.Procedure,
	}))
	resp := k.dispatch.HandleRequest(clientID, currentContext, req)
	k.events.emit(newEvent(EventContinuationDone, clientID, map[string]any{
		"service":   req.Service,
		"procedure": req.Procedure,
		"failed":    resp.Error != "",
	}))
	observability.SetObjectStoreSize(k.Store.Len())
	observability.SetActiveContinuations(k.dispatch.PendingContinuations())
	return resp
}

// Status reports live counters for bootstrap introspection procedures,
// satisfying the StatusSource interface a services package can define to
// avoid importing kernel directly.
func (k *Kernel) Status() map[string]string {
	return map[string]string{
		"services":       strconv.Itoa(len(k.Registry.ServiceNames())),
		"object_handles": strconv.Itoa(k.Store.Len()),
	}
}

// RegisterService folds a built service's procedures into the kernel's
// registry and announces each one on the event stream, matching the
// teacher's KernelEventServiceRegistered.
func (k *Kernel) RegisterService(b *registry.ServiceBuilder) error {
	if err := b.Register(k.Registry); err != nil {
		return err
	}
	k.events.emit(newEvent(EventServiceRegistered, "", map[string]any{"service": b.ServiceName()}))
	return nil
}
