// Package demo registers a sample set of services exercising the string,
// int32, float, double, tuple, list, set, dictionary and object-reference
// TypeDescriptor kinds and every concrete scenario in spec.md §8: a plain
// scalar echo, optional/out-of-order arguments, a class handle passed from
// one service to another, a cooperatively yielding counter, and an
// activity-context-gated procedure. It also registers the bootstrap
// introspection procedures (GetStatus, GetServices) spec.md §6 allows a
// host to expose through ordinary service descriptors.
package demo

import (
	"github.com/jeeves-cluster-organization/missionrpc/activity"
	"github.com/jeeves-cluster-organization/missionrpc/registry"
	"github.com/jeeves-cluster-organization/missionrpc/rpcerr"
	"github.com/jeeves-cluster-organization/missionrpc/sched"
	"github.com/jeeves-cluster-organization/missionrpc/wire"
)

// Vessel is a toy host object, the ClassX of spec.md §8 scenario 4: Make
// constructs one and hands back its handle, ReadInt is invoked on the
// exact same object via a second service.
type Vessel struct {
	Name  string
	Stage int32
}

// GetName and GetStage back Vessel_get_Name / Vessel_get_Stage.
func (v *Vessel) GetName() string { return v.Name }
func (v *Vessel) GetStage() int32 { return v.Stage }

// SetStage backs Vessel_set_Stage.
func (v *Vessel) SetStage(stage int32) { v.Stage = stage }

// StageMethod backs Vessel_StageMethod as a plain method, for tests that
// read the stage through a method call rather than a property.
func (v *Vessel) StageMethod() int32 { return v.Stage }

// Register builds and registers every demo service into reg. status
// reports live counters for the GetStatus introspection procedure.
func Register(reg *registry.Registry, status StatusSource) error {
	if err := registerSpaceCenter(reg); err != nil {
		return err
	}
	if err := registerTelemetry(reg); err != nil {
		return err
	}
	if err := registerMissionRPC(reg, status); err != nil {
		return err
	}
	return nil
}

// registerSpaceCenter covers scalar echo, optional/out-of-order binding,
// the cross-service object handle (Make/ReadInt via Vessel), and the
// activity-context-gated procedure.
func registerSpaceCenter(reg *registry.Registry) error {
	return registry.NewServiceBuilder("SpaceCenter").
		Procedure("Echo",
			[]registry.Parameter{{Name: "s", Type: wire.Scalar(wire.KindString)}},
			wire.Scalar(wire.KindString), nil,
			func(args []any) (any, error) { return args[0], nil }).
		Procedure("Combine",
			[]registry.Parameter{
				{Name: "a", Type: wire.Scalar(wire.KindFloat), Optional: true, Default: float32(1.0)},
				{Name: "b", Type: wire.Scalar(wire.KindString), Optional: true, Default: "x"},
				{Name: "c", Type: wire.Scalar(wire.KindInt32), Optional: true, Default: int32(0)},
			},
			wire.TupleOf(wire.Scalar(wire.KindFloat), wire.Scalar(wire.KindString), wire.Scalar(wire.KindInt32)),
			nil,
			func(args []any) (any, error) { return []any{args[0], args[1], args[2]}, nil }).
		Procedure("Make",
			[]registry.Parameter{{Name: "name", Type: wire.Scalar(wire.KindString)}},
			wire.ObjectRefTo("Vessel"), nil,
			func(args []any) (any, error) { return &Vessel{Name: args[0].(string)}, nil }).
		Method("Vessel", "StageMethod", nil, wire.Scalar(wire.KindInt32), nil).
		PropertyGet("Vessel", "Name", wire.Scalar(wire.KindString), nil).
		PropertyGet("Vessel", "Stage", wire.Scalar(wire.KindInt32), nil).
		PropertySet("Vessel", "Stage", wire.Scalar(wire.KindInt32), nil).
		Procedure("Launch", nil, nil, activity.NewSet(activity.Flight),
			func(args []any) (any, error) { return nil, nil }).
		Register(reg)
}

// registerTelemetry covers the cooperative-yield scenario (Count) and the
// collection kinds (List/Set/Dictionary) the SpaceCenter service doesn't
// exercise.
func registerTelemetry(reg *registry.Registry) error {
	return registry.NewServiceBuilder("Telemetry").
		YieldingProcedure("Count",
			[]registry.Parameter{{Name: "n", Type: wire.Scalar(wire.KindInt32)}},
			wire.Scalar(wire.KindInt32), nil,
			countStepEntry).
		Procedure("Altitudes",
			[]registry.Parameter{{Name: "values", Type: wire.ListOf(wire.Scalar(wire.KindDouble))}},
			wire.ListOf(wire.Scalar(wire.KindDouble)), nil,
			func(args []any) (any, error) { return args[0], nil }).
		Procedure("ReadInt",
			[]registry.Parameter{{Name: "x", Type: wire.ObjectRefTo("Vessel")}},
			wire.Scalar(wire.KindInt32), nil,
			func(args []any) (any, error) { return args[0].(*Vessel).Stage, nil }).
		Procedure("Crew",
			[]registry.Parameter{{Name: "names", Type: wire.SetOf(wire.Scalar(wire.KindString))}},
			wire.SetOf(wire.Scalar(wire.KindString)), nil,
			func(args []any) (any, error) { return args[0], nil }).
		Procedure("Resources",
			[]registry.Parameter{{Name: "levels", Type: wire.DictOf(wire.Scalar(wire.KindString), wire.Scalar(wire.KindDouble))}},
			wire.DictOf(wire.Scalar(wire.KindString), wire.Scalar(wire.KindDouble)), nil,
			func(args []any) (any, error) { return args[0], nil }).
		Register(reg)
}

// countStep implements spec.md §8 scenario 5: yields n times, each yield
// resubmitting the same logical continuation with n decremented, finally
// returning the original n once it reaches zero.
func countStep(total int32) registry.Invoker {
	remaining := total
	var step registry.Invoker
	step = func(args []any) sched.Outcome {
		if remaining <= 0 {
			return sched.Done(total)
		}
		remaining--
		return sched.Yield(sched.New("", "", func() sched.Outcome { return step(args) }))
	}
	return step
}

// countStepEntry adapts the Invoker signature YieldingProcedure expects
// (it receives the call's bound arguments, not a pre-resolved n) by
// reading n from args[0] on its first invocation.
func countStepEntry(args []any) sched.Outcome {
	n := args[0].(int32)
	return countStep(n)(args)
}

// registerMissionRPC is the bootstrap introspection service: GetStatus and
// GetServices let a freshly connected client discover what it can call
// without any side-channel documentation.
func registerMissionRPC(reg *registry.Registry, status StatusSource) error {
	return registry.NewServiceBuilder("MissionRPC").
		Procedure("GetStatus", nil, wire.DictOf(wire.Scalar(wire.KindString), wire.Scalar(wire.KindString)), nil,
			func(args []any) (any, error) {
				if status == nil {
					return map[any]any{}, nil
				}
				return toAnyMap(status.Status()), nil
			}).
		Procedure("GetServices", nil, wire.ListOf(wire.Scalar(wire.KindString)), nil,
			func(args []any) (any, error) { return toAnySlice(reg.ServiceNames()), nil }).
		Procedure("GetProcedures",
			[]registry.Parameter{{Name: "service", Type: wire.Scalar(wire.KindString)}},
			wire.ListOf(wire.Scalar(wire.KindString)), nil,
			func(args []any) (any, error) {
				service := args[0].(string)
				if !reg.HasService(service) {
					return nil, rpcerr.New(rpcerr.UnknownService, "%s", service)
				}
				return toAnySlice(reg.ProcedureNames(service)), nil
			}).
		Register(reg)
}

// StatusSource supplies the live counters GetStatus reports, implemented
// by kernel.Kernel in the demo binary.
type StatusSource interface {
	Status() map[string]string
}

// toAnySlice adapts a []string returned by registry introspection helpers
// to the []any shape wire.EncodeValue expects for KindList.
func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// toAnyMap adapts a map[string]string to the map[any]any shape
// wire.EncodeValue expects for KindDictionary.
func toAnyMap(m map[string]string) map[any]any {
	out := make(map[any]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
