// Package rpcfacade implements Component G: the Request/Response façade.
// It only frames bytes into and out of the Request/Response message
// shapes described in spec.md §6 — it has no dispatch behavior of its
// own, that belongs to package dispatch.
package rpcfacade

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/jeeves-cluster-organization/missionrpc/bind"
	"github.com/jeeves-cluster-organization/missionrpc/rpcerr"
)

// Field numbers for the Request/Response/Argument message shapes.
const (
	fieldRequestService   = protowire.Number(1)
	fieldRequestProcedure = protowire.Number(2)
	fieldRequestArgument  = protowire.Number(3)

	fieldArgumentPosition = protowire.Number(1)
	fieldArgumentValue    = protowire.Number(2)

	// Response field numbers per spec.md §6: double time = 1; string
	// error = 2; bytes return_value = 3.
	fieldResponseTime  = protowire.Number(1)
	fieldResponseError = protowire.Number(2)
	fieldResponseValue = protowire.Number(3)
)

// Request is one decoded call: a (service, procedure) pair plus its
// positional arguments, still wire-encoded — bind.Bind decodes each one
// once the registry has told it the declared type.
type Request struct {
	Service   string
	Procedure string
	Arguments []bind.RawArgument
}

// Response is the result of one dispatched call, ready to frame back to
// the client. Exactly one of Value or Error is meaningful: Error != ""
// means the call failed and Value is unset. Time is stamped by the host
// when the response is finalized (spec.md §3, §4.F) — seconds since the
// Unix epoch, fractional, matching the wire's double representation.
type Response struct {
	Time  float64
	Value []byte
	Error string
}

// EncodeRequest serializes req into its wire form, the payload that
// wire.WriteFrame then length-prefixes.
func EncodeRequest(req Request) []byte {
	var out []byte
	out = protowire.AppendTag(out, fieldRequestService, protowire.BytesType)
	out = protowire.AppendString(out, req.Service)
	out = protowire.AppendTag(out, fieldRequestProcedure, protowire.BytesType)
	out = protowire.AppendString(out, req.Procedure)
	for _, arg := range req.Arguments {
		out = protowire.AppendTag(out, fieldRequestArgument, protowire.BytesType)
		out = protowire.AppendBytes(out, encodeArgument(arg))
	}
	return out
}

func encodeArgument(arg bind.RawArgument) []byte {
	var out []byte
	out = protowire.AppendTag(out, fieldArgumentPosition, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(arg.Position))
	out = protowire.AppendTag(out, fieldArgumentValue, protowire.BytesType)
	out = protowire.AppendBytes(out, arg.Value)
	return out
}

// DecodeRequest parses bytes produced by EncodeRequest (or an equivalent
// client encoder).
func DecodeRequest(b []byte) (Request, error) {
	var req Request
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return req, rpcerr.New(rpcerr.InvalidArgument, "malformed request tag")
		}
		b = b[n:]
		switch {
		case num == fieldRequestService && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return req, rpcerr.New(rpcerr.InvalidArgument, "malformed request service")
			}
			req.Service = v
			b = b[n:]
		case num == fieldRequestProcedure && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return req, rpcerr.New(rpcerr.InvalidArgument, "malformed request procedure")
			}
			req.Procedure = v
			b = b[n:]
		case num == fieldRequestArgument && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return req, rpcerr.New(rpcerr.InvalidArgument, "malformed request argument")
			}
			arg, err := decodeArgument(v)
			if err != nil {
				return req, err
			}
			req.Arguments = append(req.Arguments, arg)
			b = b[n:]
		default:
			skip := protowire.ConsumeFieldValue(num, typ, b)
			if skip < 0 {
				return req, rpcerr.New(rpcerr.InvalidArgument, "malformed request field")
			}
			b = b[skip:]
		}
	}
	return req, nil
}

func decodeArgument(b []byte) (bind.RawArgument, error) {
	var arg bind.RawArgument
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return arg, rpcerr.New(rpcerr.InvalidArgument, "malformed argument tag")
		}
		b = b[n:]
		switch {
		case num == fieldArgumentPosition && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return arg, rpcerr.New(rpcerr.InvalidArgument, "malformed argument position")
			}
			arg.Position = int(v)
			b = b[n:]
		case num == fieldArgumentValue && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return arg, rpcerr.New(rpcerr.InvalidArgument, "malformed argument value")
			}
			arg.Value = append([]byte(nil), v...)
			b = b[n:]
		default:
			skip := protowire.ConsumeFieldValue(num, typ, b)
			if skip < 0 {
				return arg, rpcerr.New(rpcerr.InvalidArgument, "malformed argument field")
			}
			b = b[skip:]
		}
	}
	return arg, nil
}

// EncodeResponse serializes resp into its wire form.
func EncodeResponse(resp Response) []byte {
	var out []byte
	out = protowire.AppendTag(out, fieldResponseTime, protowire.Fixed64Type)
	out = protowire.AppendFixed64(out, math.Float64bits(resp.Time))
	if resp.Error != "" {
		out = protowire.AppendTag(out, fieldResponseError, protowire.BytesType)
		out = protowire.AppendString(out, resp.Error)
		return out
	}
	out = protowire.AppendTag(out, fieldResponseValue, protowire.BytesType)
	out = protowire.AppendBytes(out, resp.Value)
	return out
}

// DecodeResponse parses bytes produced by EncodeResponse.
func DecodeResponse(b []byte) (Response, error) {
	var resp Response
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return resp, rpcerr.New(rpcerr.InvalidArgument, "malformed response tag")
		}
		b = b[n:]
		switch {
		case num == fieldResponseTime && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return resp, rpcerr.New(rpcerr.InvalidArgument, "malformed response time")
			}
			resp.Time = math.Float64frombits(v)
			b = b[n:]
		case num == fieldResponseValue && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return resp, rpcerr.New(rpcerr.InvalidArgument, "malformed response value")
			}
			resp.Value = append([]byte(nil), v...)
			b = b[n:]
		case num == fieldResponseError && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return resp, rpcerr.New(rpcerr.InvalidArgument, "malformed response error")
			}
			resp.Error = v
			b = b[n:]
		default:
			skip := protowire.ConsumeFieldValue(num, typ, b)
			if skip < 0 {
				return resp, rpcerr.New(rpcerr.InvalidArgument, "malformed response field")
			}
			b = b[skip:]
		}
	}
	return resp, nil
}
