package registry

import (
	"github.com/jeeves-cluster-organization/missionrpc/activity"
	"github.com/jeeves-cluster-organization/missionrpc/sched"
	"github.com/jeeves-cluster-organization/missionrpc/wire"
)

// Parameter describes one declared argument position.
type Parameter struct {
	Name     string
	Type     *wire.TypeDescriptor
	Optional bool
	// Default is substituted when the caller omits this (optional)
	// position. Ignored when Optional is false.
	Default any
}

// Invoker is the bound procedure body. It receives the fully bound
// argument list (receiver, if any, already inserted at position 0 by the
// binder) and returns the first Outcome of running the call — Done or
// Failed for an ordinary procedure, or Yield(next) for one that must be
// resumed by the scheduler.
type Invoker func(args []any) sched.Outcome

// ProcedureSignature is everything the registry knows about one
// registered (service, procedure) pair.
type ProcedureSignature struct {
	Service   string
	Procedure string

	Parsed ParsedName

	Parameters []Parameter
	ReturnType *wire.TypeDescriptor // nil means the procedure returns void

	// RequiredContext is the set of activity contexts this procedure may
	// be invoked from; empty means "any context."
	RequiredContext activity.Set

	Invoke Invoker
}

// IsInstanceBound reports whether this signature binds an instance
// receiver at argument position 0 (Class_Method, Class_get_X,
// Class_set_X).
func (p *ProcedureSignature) IsInstanceBound() bool {
	switch p.Parsed.Accessor {
	case AccessorMethod, AccessorClassGet, AccessorClassSet:
		return true
	default:
		return false
	}
}
