package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeves-cluster-organization/missionrpc/rpcerr"
	"github.com/jeeves-cluster-organization/missionrpc/sched"
	"github.com/jeeves-cluster-organization/missionrpc/wire"
)

func TestParseNameGrammar(t *testing.T) {
	cases := []struct {
		name string
		want ParsedName
	}{
		{"Echo", ParsedName{Accessor: AccessorPlain, Member: "Echo"}},
		{"get_Altitude", ParsedName{Accessor: AccessorGet, Member: "Altitude"}},
		{"set_Altitude", ParsedName{Accessor: AccessorSet, Member: "Altitude"}},
		{"Vessel_Stage", ParsedName{Accessor: AccessorMethod, ClassName: "Vessel", Member: "Stage"}},
		{"Vessel_get_Name", ParsedName{Accessor: AccessorClassGet, ClassName: "Vessel", Member: "Name"}},
		{"Vessel_set_Name", ParsedName{Accessor: AccessorClassSet, ClassName: "Vessel", Member: "Name"}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseName(c.name), c.name)
	}
}

func TestRegisterAndLookup(t *testing.T) {
	r := New(nil)
	sig := &ProcedureSignature{
		Service:   "Demo",
		Procedure: "Echo",
		Parsed:    ParseName("Echo"),
		Invoke:    func(args []any) sched.Outcome { return sched.Done(args[0]) },
	}
	require.NoError(t, r.Register(sig))

	got, err := r.Lookup("Demo", "Echo")
	require.NoError(t, err)
	assert.Same(t, sig, got)
}

func TestLookupUnknownService(t *testing.T) {
	r := New(nil)
	_, err := r.Lookup("NonExistent", "Echo")
	require.Error(t, err)
	kind, ok := rpcerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, rpcerr.UnknownService, kind)
}

func TestLookupUnknownProcedure(t *testing.T) {
	r := New(nil)
	require.NoError(t, r.Register(&ProcedureSignature{Service: "Demo", Procedure: "Echo", Parsed: ParseName("Echo")}))
	_, err := r.Lookup("Demo", "DoesNotExist")
	require.Error(t, err)
	kind, _ := rpcerr.KindOf(err)
	assert.Equal(t, rpcerr.UnknownProcedure, kind)
}

func TestRegisterRejectsDuplicateProcedure(t *testing.T) {
	r := New(nil)
	sig := &ProcedureSignature{Service: "Demo", Procedure: "Echo", Parsed: ParseName("Echo")}
	require.NoError(t, r.Register(sig))
	err := r.Register(sig)
	require.Error(t, err)
}

func TestRegisterRejectsRequiredAfterOptional(t *testing.T) {
	r := New(nil)
	sig := &ProcedureSignature{
		Service:   "Demo",
		Procedure: "Echo",
		Parsed:    ParseName("Echo"),
		Parameters: []Parameter{
			{Name: "a", Optional: true, Default: int32(0)},
			{Name: "b"},
		},
	}
	err := r.Register(sig)
	require.Error(t, err)
}

func TestServiceBuilderProcedure(t *testing.T) {
	r := New(nil)
	NewServiceBuilder("Demo").
		Procedure("Echo", []Parameter{{Name: "msg", Type: wire.Scalar(wire.KindString)}}, wire.Scalar(wire.KindString), nil,
			func(args []any) (any, error) { return args[0], nil }).
		MustRegister(r)

	sig, err := r.Lookup("Demo", "Echo")
	require.NoError(t, err)
	outcome := sig.Invoke([]any{"hello"})
	assert.Equal(t, sched.KindDone, outcome.Kind)
	assert.Equal(t, "hello", outcome.Value)
}

type fakeVessel struct{ name string }

func (v *fakeVessel) GetName() string { return v.name }
func (v *fakeVessel) SetName(n string) { v.name = n }
func (v *fakeVessel) Stage() (int32, error) { return 3, nil }

func TestServiceBuilderMethodReflection(t *testing.T) {
	r := New(nil)
	NewServiceBuilder("SpaceCenter").
		Method("Vessel", "Stage", nil, wire.Scalar(wire.KindInt32), nil).
		MustRegister(r)

	sig, err := r.Lookup("SpaceCenter", "Vessel_Stage")
	require.NoError(t, err)
	v := &fakeVessel{name: "Kerbal X"}
	outcome := sig.Invoke([]any{v})
	require.Equal(t, sched.KindDone, outcome.Kind)
	assert.Equal(t, int32(3), outcome.Value)
}

func TestServiceBuilderPropertyReflection(t *testing.T) {
	r := New(nil)
	NewServiceBuilder("SpaceCenter").
		PropertyGet("Vessel", "Name", wire.Scalar(wire.KindString), nil).
		PropertySet("Vessel", "Name", wire.Scalar(wire.KindString), nil).
		MustRegister(r)

	v := &fakeVessel{name: "Kerbal X"}

	getSig, err := r.Lookup("SpaceCenter", "Vessel_get_Name")
	require.NoError(t, err)
	outcome := getSig.Invoke([]any{v})
	assert.Equal(t, "Kerbal X", outcome.Value)

	setSig, err := r.Lookup("SpaceCenter", "Vessel_set_Name")
	require.NoError(t, err)
	outcome = setSig.Invoke([]any{v, "Kerbal Y"})
	assert.Equal(t, sched.KindDone, outcome.Kind)
	assert.Equal(t, "Kerbal Y", v.name)
}

func TestReflectMethodInvokerNullReceiver(t *testing.T) {
	inv := reflectMethodInvoker("Stage")
	outcome := inv([]any{nil})
	assert.Equal(t, sched.KindFailed, outcome.Kind)
	kind, ok := rpcerr.KindOf(outcome.Err)
	require.True(t, ok)
	assert.Equal(t, rpcerr.NullReference, kind)
}
