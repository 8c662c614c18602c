package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeves-cluster-organization/missionrpc/activity"
	"github.com/jeeves-cluster-organization/missionrpc/bind"
	"github.com/jeeves-cluster-organization/missionrpc/dispatch"
	"github.com/jeeves-cluster-organization/missionrpc/objects"
	"github.com/jeeves-cluster-organization/missionrpc/registry"
	"github.com/jeeves-cluster-organization/missionrpc/rpcfacade"
	"github.com/jeeves-cluster-organization/missionrpc/wire"
)

type fakeStatus struct{ status map[string]string }

func (f fakeStatus) Status() map[string]string { return f.status }

func newTestDispatcher(t *testing.T) (*dispatch.Dispatcher, *registry.Registry) {
	t.Helper()
	reg := registry.New(nil)
	store := objects.New(nil)
	require.NoError(t, Register(reg, fakeStatus{status: map[string]string{"services": "3"}}))
	return dispatch.New(nil, reg, store), reg
}

func call(d *dispatch.Dispatcher, clientID, service, procedure string, args ...bind.RawArgument) rpcfacade.Response {
	return d.HandleRequest(clientID, activity.Flight, rpcfacade.Request{
		Service:   service,
		Procedure: procedure,
		Arguments: args,
	})
}

func TestUnknownServiceFails(t *testing.T) {
	d, _ := newTestDispatcher(t)
	resp := call(d, "c1", "NoSuchService", "Echo")
	assert.NotEmpty(t, resp.Error)
}

func TestEchoRoundTrips(t *testing.T) {
	d, _ := newTestDispatcher(t)
	resp := call(d, "c1", "SpaceCenter", "Echo", bind.RawArgument{Position: 0, Value: wire.EncodeString("hello")})
	require.Empty(t, resp.Error)
	got, err := wire.DecodeString(resp.Value)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestCombineUsesDefaultsForOmittedOptionalArguments(t *testing.T) {
	d, _ := newTestDispatcher(t)
	resp := call(d, "c1", "SpaceCenter", "Combine")
	require.Empty(t, resp.Error)

	tupleType := wire.TupleOf(wire.Scalar(wire.KindFloat), wire.Scalar(wire.KindString), wire.Scalar(wire.KindInt32))
	decoded, err := wire.DecodeValue(tupleType, resp.Value, objects.New(nil))
	require.NoError(t, err)
	assert.Equal(t, []any{float32(1.0), "x", int32(0)}, decoded)
}

func TestCombineAcceptsOutOfOrderArguments(t *testing.T) {
	d, _ := newTestDispatcher(t)
	resp := call(d, "c1", "SpaceCenter", "Combine",
		bind.RawArgument{Position: 2, Value: wire.EncodeInt32(9)},
		bind.RawArgument{Position: 0, Value: wire.EncodeFloat(2.5)},
	)
	require.Empty(t, resp.Error)

	tupleType := wire.TupleOf(wire.Scalar(wire.KindFloat), wire.Scalar(wire.KindString), wire.Scalar(wire.KindInt32))
	decoded, err := wire.DecodeValue(tupleType, resp.Value, objects.New(nil))
	require.NoError(t, err)
	assert.Equal(t, []any{float32(2.5), "x", int32(9)}, decoded)
}

func TestMakeThenReadIntRoundTripsHandleAcrossServices(t *testing.T) {
	d, _ := newTestDispatcher(t)

	makeResp := call(d, "c1", "SpaceCenter", "Make", bind.RawArgument{Position: 0, Value: wire.EncodeString("Kerbal X")})
	require.Empty(t, makeResp.Error)
	handle, err := wire.DecodeObjectRef(makeResp.Value)
	require.NoError(t, err)
	require.NotZero(t, handle)

	setResp := call(d, "c1", "SpaceCenter", "Vessel_set_Stage",
		bind.RawArgument{Position: 0, Value: wire.EncodeObjectRef(handle)},
		bind.RawArgument{Position: 1, Value: wire.EncodeInt32(2)},
	)
	require.Empty(t, setResp.Error)

	readResp := call(d, "c1", "Telemetry", "ReadInt", bind.RawArgument{Position: 0, Value: wire.EncodeObjectRef(handle)})
	require.Empty(t, readResp.Error)
	stage, err := wire.DecodeInt32(readResp.Value)
	require.NoError(t, err)
	assert.Equal(t, int32(2), stage)
}

func TestVesselPropertyGetAndMethod(t *testing.T) {
	d, _ := newTestDispatcher(t)

	makeResp := call(d, "c1", "SpaceCenter", "Make", bind.RawArgument{Position: 0, Value: wire.EncodeString("Kerbal X")})
	require.Empty(t, makeResp.Error)
	handle, err := wire.DecodeObjectRef(makeResp.Value)
	require.NoError(t, err)

	nameResp := call(d, "c1", "SpaceCenter", "Vessel_get_Name", bind.RawArgument{Position: 0, Value: wire.EncodeObjectRef(handle)})
	require.Empty(t, nameResp.Error)
	name, err := wire.DecodeString(nameResp.Value)
	require.NoError(t, err)
	assert.Equal(t, "Kerbal X", name)

	stageResp := call(d, "c1", "SpaceCenter", "Vessel_StageMethod", bind.RawArgument{Position: 0, Value: wire.EncodeObjectRef(handle)})
	require.Empty(t, stageResp.Error)
	stage, err := wire.DecodeInt32(stageResp.Value)
	require.NoError(t, err)
	assert.Equal(t, int32(0), stage)
}

func TestCountYieldsUntilDone(t *testing.T) {
	d, _ := newTestDispatcher(t)
	resp := call(d, "c1", "Telemetry", "Count", bind.RawArgument{Position: 0, Value: wire.EncodeInt32(3)})
	require.Empty(t, resp.Error)
	n, err := wire.DecodeInt32(resp.Value)
	require.NoError(t, err)
	assert.Equal(t, int32(3), n)
}

func TestLaunchRequiresFlightContext(t *testing.T) {
	d, _ := newTestDispatcher(t)
	resp := d.HandleRequest("c1", activity.MapView, rpcfacade.Request{Service: "SpaceCenter", Procedure: "Launch"})
	assert.NotEmpty(t, resp.Error)

	resp = d.HandleRequest("c1", activity.Flight, rpcfacade.Request{Service: "SpaceCenter", Procedure: "Launch"})
	assert.Empty(t, resp.Error)
}

func TestGetStatusReportsSuppliedSource(t *testing.T) {
	d, _ := newTestDispatcher(t)
	resp := call(d, "c1", "MissionRPC", "GetStatus")
	require.Empty(t, resp.Error)

	dictType := wire.DictOf(wire.Scalar(wire.KindString), wire.Scalar(wire.KindString))
	decoded, err := wire.DecodeValue(dictType, resp.Value, objects.New(nil))
	require.NoError(t, err)
	assert.Equal(t, map[any]any{"services": "3"}, decoded)
}

func TestGetServicesListsEveryRegisteredService(t *testing.T) {
	d, reg := newTestDispatcher(t)
	resp := call(d, "c1", "MissionRPC", "GetServices")
	require.Empty(t, resp.Error)

	listType := wire.ListOf(wire.Scalar(wire.KindString))
	decoded, err := wire.DecodeValue(listType, resp.Value, objects.New(nil))
	require.NoError(t, err)
	assert.ElementsMatch(t, reg.ServiceNames(), decoded)
}

func TestGetProceduresRejectsUnknownService(t *testing.T) {
	d, _ := newTestDispatcher(t)
	resp := call(d, "c1", "MissionRPC", "GetProcedures", bind.RawArgument{Position: 0, Value: wire.EncodeString("Nope")})
	assert.NotEmpty(t, resp.Error)
}
