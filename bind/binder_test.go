package bind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeves-cluster-organization/missionrpc/registry"
	"github.com/jeeves-cluster-organization/missionrpc/rpcerr"
	"github.com/jeeves-cluster-organization/missionrpc/wire"
)

type noopResolver struct{}

func (noopResolver) Resolve(handle uint64) (any, error) { return nil, nil }
func (noopResolver) HandleFor(obj any) uint64            { return 0 }

func TestBindRequiredArgument(t *testing.T) {
	sig := &registry.ProcedureSignature{
		Parameters: []registry.Parameter{{Name: "msg", Type: wire.Scalar(wire.KindString)}},
	}
	args, err := Bind(sig, []RawArgument{{Position: 0, Value: wire.EncodeString("hello")}}, noopResolver{})
	require.NoError(t, err)
	assert.Equal(t, []any{"hello"}, args)
}

func TestBindMissingRequiredArgument(t *testing.T) {
	sig := &registry.ProcedureSignature{
		Parameters: []registry.Parameter{{Name: "msg", Type: wire.Scalar(wire.KindString)}},
	}
	_, err := Bind(sig, nil, noopResolver{})
	require.Error(t, err)
	kind, ok := rpcerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, rpcerr.MissingArgument, kind)
}

func TestBindOptionalDefaultSubstitution(t *testing.T) {
	sig := &registry.ProcedureSignature{
		Parameters: []registry.Parameter{
			{Name: "a", Type: wire.Scalar(wire.KindInt32)},
			{Name: "b", Type: wire.Scalar(wire.KindInt32), Optional: true, Default: int32(7)},
		},
	}
	args, err := Bind(sig, []RawArgument{{Position: 0, Value: wire.EncodeInt32(1)}}, noopResolver{})
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), int32(7)}, args)
}

func TestBindOutOfOrderArguments(t *testing.T) {
	sig := &registry.ProcedureSignature{
		Parameters: []registry.Parameter{
			{Name: "a", Type: wire.Scalar(wire.KindInt32)},
			{Name: "b", Type: wire.Scalar(wire.KindInt32), Optional: true, Default: int32(0)},
			{Name: "c", Type: wire.Scalar(wire.KindInt32), Optional: true, Default: int32(0)},
		},
	}
	args, err := Bind(sig, []RawArgument{
		{Position: 2, Value: wire.EncodeInt32(3)},
		{Position: 0, Value: wire.EncodeInt32(1)},
	}, noopResolver{})
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), int32(0), int32(3)}, args)
}

func TestBindReceiverAtPositionZero(t *testing.T) {
	type vessel struct{ name string }
	v := &vessel{name: "Kerbal X"}
	resolver := fakeResolverFor(v)

	sig := &registry.ProcedureSignature{
		Parameters: []registry.Parameter{
			{Name: "this", Type: wire.ObjectRefTo("Vessel")},
		},
	}
	args, err := Bind(sig, []RawArgument{{Position: 0, Value: wire.EncodeObjectRef(1)}}, resolver)
	require.NoError(t, err)
	assert.Same(t, v, args[0])
}

func TestBindInvalidArgumentPropagatesFromDecode(t *testing.T) {
	sig := &registry.ProcedureSignature{
		Parameters: []registry.Parameter{{Name: "a", Type: wire.Scalar(wire.KindInt32)}},
	}
	malformed := append(wire.EncodeInt32(1), 0xFF)
	_, err := Bind(sig, []RawArgument{{Position: 0, Value: malformed}}, noopResolver{})
	require.Error(t, err)
	kind, _ := rpcerr.KindOf(err)
	assert.Equal(t, rpcerr.InvalidArgument, kind)
}

type fixedResolver struct{ obj any }

func fakeResolverFor(obj any) fixedResolver { return fixedResolver{obj: obj} }

func (r fixedResolver) Resolve(handle uint64) (any, error) { return r.obj, nil }
func (r fixedResolver) HandleFor(obj any) uint64            { return 1 }
