// builder.go implements the open question in SPEC_FULL.md §14.2: service
// descriptors are built with a fluent Go builder plus reflection-based
// helpers for class-bound methods and properties, in the spirit of the
// procedure{Method reflect.Method; ArgType; ReplyType; Receiver} triple
// used to describe a registered procedure in the go-qrp reference
// implementation, adapted from bencode/UDP framing to this wire/TCP
// framing.
package registry

import (
	"reflect"

	"github.com/jeeves-cluster-organization/missionrpc/activity"
	"github.com/jeeves-cluster-organization/missionrpc/rpcerr"
	"github.com/jeeves-cluster-organization/missionrpc/sched"
	"github.com/jeeves-cluster-organization/missionrpc/wire"
)

// ServiceBuilder accumulates ProcedureSignature values for one service
// name before they're registered all at once.
type ServiceBuilder struct {
	service string
	sigs    []*ProcedureSignature
}

// NewServiceBuilder starts a builder for service.
func NewServiceBuilder(service string) *ServiceBuilder {
	return &ServiceBuilder{service: service}
}

// Procedure registers a plain (non-class-bound) procedure whose body is an
// ordinary Go function. fn's panics are not caught here — that is
// the scheduler's job.
func (b *ServiceBuilder) Procedure(name string, params []Parameter, ret *wire.TypeDescriptor, ctx activity.Set, fn func(args []any) (any, error)) *ServiceBuilder {
	return b.add(name, params, ret, ctx, wrapSimple(fn))
}

// YieldingProcedure registers a plain procedure whose body controls its
// own Outcome directly, including yielding, by returning a sched.Outcome
// instead of a plain (value, error) pair.
func (b *ServiceBuilder) YieldingProcedure(name string, params []Parameter, ret *wire.TypeDescriptor, ctx activity.Set, invoke Invoker) *ServiceBuilder {
	return b.add(name, params, ret, ctx, invoke)
}

// Method registers a Class_Method-shaped procedure. Argument position 0
// is the receiver instance (already resolved from its ObjectRef handle by
// the binder); methodName is looked up on that instance via reflection at
// call time, so class descriptors never need to hand-write a switch over
// method names.
func (b *ServiceBuilder) Method(className, methodName string, params []Parameter, ret *wire.TypeDescriptor, ctx activity.Set) *ServiceBuilder {
	name := className + "_" + methodName
	return b.add(name, withReceiver(className, params), ret, ctx, reflectMethodInvoker(methodName))
}

// PropertyGet registers a Class_get_X-shaped procedure, calling a
// zero-argument Go method named "Get"+propertyName on the receiver.
func (b *ServiceBuilder) PropertyGet(className, propertyName string, ret *wire.TypeDescriptor, ctx activity.Set) *ServiceBuilder {
	name := className + "_get_" + propertyName
	return b.add(name, withReceiver(className, nil), ret, ctx, reflectMethodInvoker("Get"+propertyName))
}

// PropertySet registers a Class_set_X-shaped procedure, calling a
// single-argument Go method named "Set"+propertyName on the receiver.
func (b *ServiceBuilder) PropertySet(className, propertyName string, valueType *wire.TypeDescriptor, ctx activity.Set) *ServiceBuilder {
	name := className + "_set_" + propertyName
	params := withReceiver(className, []Parameter{{Name: "value", Type: valueType}})
	return b.add(name, params, nil, ctx, reflectMethodInvoker("Set"+propertyName))
}

// withReceiver prepends the implicit "this" ObjectRef parameter every
// class-bound procedure carries at position 0 on the wire, per the
// Class_Method/Class_get_X/Class_set_X naming grammar.
func withReceiver(className string, params []Parameter) []Parameter {
	receiver := Parameter{Name: "this", Type: wire.ObjectRefTo(className)}
	return append([]Parameter{receiver}, params...)
}

func (b *ServiceBuilder) add(name string, params []Parameter, ret *wire.TypeDescriptor, ctx activity.Set, invoke Invoker) *ServiceBuilder {
	sig := &ProcedureSignature{
		Service:         b.service,
		Procedure:       name,
		Parsed:          ParseName(name),
		Parameters:      params,
		ReturnType:      ret,
		RequiredContext: ctx,
		Invoke:          invoke,
	}
	b.sigs = append(b.sigs, sig)
	return b
}

// Build returns the accumulated signatures.
func (b *ServiceBuilder) Build() []*ProcedureSignature {
	return b.sigs
}

// ServiceName returns the service name this builder was created with.
func (b *ServiceBuilder) ServiceName() string {
	return b.service
}

// Register registers every accumulated signature into r, stopping at and
// returning the first registration error.
func (b *ServiceBuilder) Register(r *Registry) error {
	for _, sig := range b.sigs {
		if err := r.Register(sig); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister registers every accumulated signature into r, panicking on
// the first registration error — intended for service bootstrap, where a
// naming or duplicate-procedure mistake is a programming error that
// should fail loudly before the host ever accepts a connection.
func (b *ServiceBuilder) MustRegister(r *Registry) {
	if err := b.Register(r); err != nil {
		panic(err)
	}
}

func wrapSimple(fn func(args []any) (any, error)) Invoker {
	return func(args []any) sched.Outcome {
		v, err := fn(args)
		if err != nil {
			return sched.Failed(err)
		}
		return sched.Done(v)
	}
}

// reflectMethodInvoker builds an Invoker that looks up methodName on
// args[0] (the resolved receiver) via reflection and calls it with the
// remaining bound arguments, converting the return values back per the
// (result, error) or bare-result or bare-error conventions.
func reflectMethodInvoker(methodName string) Invoker {
	return func(args []any) sched.Outcome {
		if len(args) == 0 || args[0] == nil {
			return sched.Failed(rpcerr.New(rpcerr.NullReference, "receiver is null"))
		}
		recv := reflect.ValueOf(args[0])
		method := recv.MethodByName(methodName)
		if !method.IsValid() {
			return sched.Failed(rpcerr.New(rpcerr.ProcedureFailed, "receiver %T has no method %s", args[0], methodName))
		}

		in := make([]reflect.Value, len(args)-1)
		for i, a := range args[1:] {
			if a == nil {
				in[i] = reflect.New(method.Type().In(i)).Elem()
				continue
			}
			in[i] = reflect.ValueOf(a)
		}

		out := method.Call(in)
		return interpretReflectResults(out)
	}
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// interpretReflectResults converts a reflect.Call result slice into an
// Outcome, supporting the conventional Go return shapes: (), (error),
// (T), and (T, error).
func interpretReflectResults(out []reflect.Value) sched.Outcome {
	switch len(out) {
	case 0:
		return sched.Done(nil)
	case 1:
		if out[0].Type().Implements(errType) {
			if err, ok := out[0].Interface().(error); ok && err != nil {
				return sched.Failed(err)
			}
			return sched.Done(nil)
		}
		return sched.Done(out[0].Interface())
	default:
		last := out[len(out)-1]
		if last.Type().Implements(errType) {
			if err, ok := last.Interface().(error); ok && err != nil {
				return sched.Failed(err)
			}
		}
		return sched.Done(out[0].Interface())
	}
}
