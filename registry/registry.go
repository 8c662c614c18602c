// Package registry implements Component C: the service registry. Every
// procedure, property getter/setter, and class-bound method is registered
// under a flat (service, procedure) key — there is no implicit namespace
// nesting beyond that one pair, matching spec.md §4.C.
package registry

import (
	"fmt"
	"sync"

	"github.com/jeeves-cluster-organization/missionrpc/logging"
	"github.com/jeeves-cluster-organization/missionrpc/rpcerr"
)

// Registry is the flat (service, procedure) -> ProcedureSignature map.
// Registration happens once at startup per service; lookups happen on
// every dispatched request, so Registry is read-mostly and guarded by an
// RWMutex the way the teacher's ServiceRegistry is.
type Registry struct {
	logger logging.Logger

	mu       sync.RWMutex
	services map[string]map[string]*ProcedureSignature
}

// New creates an empty Registry.
func New(logger logging.Logger) *Registry {
	return &Registry{
		logger:   logger,
		services: make(map[string]map[string]*ProcedureSignature),
	}
}

// Register adds sig under (sig.Service, sig.Procedure). Registration-time
// validation is fatal by design (spec.md §7: "a duplicate procedure name
// within one service is a registration-time fatal error, not a runtime
// one") — Register returns an error instead of panicking so the caller
// (typically service bootstrap) can decide how fatal is fatal, but no
// caller should attempt to recover from it and keep serving with a
// partially registered service.
func (r *Registry) Register(sig *ProcedureSignature) error {
	if err := validateOptionalSuffix(sig.Parameters); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	procs, ok := r.services[sig.Service]
	if !ok {
		procs = make(map[string]*ProcedureSignature)
		r.services[sig.Service] = procs
	}
	if _, exists := procs[sig.Procedure]; exists {
		return fmt.Errorf("duplicate procedure %s.%s: procedure names must be unique within a service", sig.Service, sig.Procedure)
	}
	procs[sig.Procedure] = sig

	if r.logger != nil {
		r.logger.Info("procedure_registered", "service", sig.Service, "procedure", sig.Procedure)
	}
	return nil
}

// validateOptionalSuffix enforces that once a parameter position is
// optional, every later position must also be optional — an optional
// argument can never precede a required one, since default substitution
// only ever fills a suffix of the argument list.
func validateOptionalSuffix(params []Parameter) error {
	seenOptional := false
	for i, p := range params {
		if p.Optional {
			seenOptional = true
			continue
		}
		if seenOptional {
			return fmt.Errorf("parameter %d (%s) is required but follows an optional parameter", i, p.Name)
		}
	}
	return nil
}

// Lookup finds the signature for (service, procedure), returning
// rpcerr.UnknownService or rpcerr.UnknownProcedure when absent.
func (r *Registry) Lookup(service, procedure string) (*ProcedureSignature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	procs, ok := r.services[service]
	if !ok {
		return nil, rpcerr.New(rpcerr.UnknownService, "%s", service)
	}
	sig, ok := procs[procedure]
	if !ok {
		return nil, rpcerr.New(rpcerr.UnknownProcedure, "%s.%s", service, procedure)
	}
	return sig, nil
}

// HasService reports whether any procedure has been registered under
// service.
func (r *Registry) HasService(service string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.services[service]
	return ok
}

// ServiceNames returns every registered service name.
func (r *Registry) ServiceNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	return names
}

// ProcedureNames returns every procedure name registered under service.
func (r *Registry) ProcedureNames(service string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	procs, ok := r.services[service]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(procs))
	for name := range procs {
		names = append(names, name)
	}
	return names
}
