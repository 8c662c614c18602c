package rpcfacade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeves-cluster-organization/missionrpc/bind"
	"github.com/jeeves-cluster-organization/missionrpc/wire"
)

func TestRequestRoundtrip(t *testing.T) {
	req := Request{
		Service:   "SpaceCenter",
		Procedure: "Vessel_get_Name",
		Arguments: []bind.RawArgument{
			{Position: 0, Value: wire.EncodeObjectRef(7)},
		},
	}
	got, err := DecodeRequest(EncodeRequest(req))
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestRequestRoundtripOutOfOrderArguments(t *testing.T) {
	req := Request{
		Service:   "Demo",
		Procedure: "Echo",
		Arguments: []bind.RawArgument{
			{Position: 2, Value: wire.EncodeInt32(3)},
			{Position: 0, Value: wire.EncodeInt32(1)},
		},
	}
	got, err := DecodeRequest(EncodeRequest(req))
	require.NoError(t, err)
	assert.Equal(t, req.Arguments, got.Arguments)
}

func TestResponseRoundtripValue(t *testing.T) {
	resp := Response{Time: 1717000000.5, Value: wire.EncodeString("ok")}
	got, err := DecodeResponse(EncodeResponse(resp))
	require.NoError(t, err)
	assert.Equal(t, resp, got)
}

func TestResponseRoundtripError(t *testing.T) {
	resp := Response{Time: 1717000000.5, Error: "UnknownService: NonExistant"}
	got, err := DecodeResponse(EncodeResponse(resp))
	require.NoError(t, err)
	assert.Equal(t, resp, got)
}
