// Package wire implements Component A: the wire codec. Every value crossing
// the RPC boundary — primitives, enums, messages, collections, and object
// references — is encoded to and decoded from the protobuf wire form
// described in spec.md §4.A and §6, without a protoc code-generation step:
// encoding/protowire gives us the primitive varint/fixed/length-delimited
// building blocks and this package assembles them by hand into the fixed
// List/Set/Dictionary/Tuple schemas spec.md prescribes.
//
// Every encoder in this file is isomorphic with its decoder (testable
// property #2 in spec.md §8): decode(encode(v)) == v for every supported
// type.
package wire

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/jeeves-cluster-organization/missionrpc/rpcerr"
)

// EncodeInt32 encodes a signed 32-bit integer using protobuf's zigzag
// varint form (the "sint32" wire representation), value-only, no tag —
// spec.md §4.A: "An argument field on the wire carries exactly the bytes
// that a top-level field of that scalar type would carry — i.e.
// value-only, no tag."
func EncodeInt32(v int32) []byte {
	return protowire.AppendVarint(nil, protowire.EncodeZigZag(int64(v)))
}

// DecodeInt32 decodes bytes produced by EncodeInt32.
func DecodeInt32(b []byte) (int32, error) {
	u, n := protowire.ConsumeVarint(b)
	if n < 0 || n != len(b) {
		return 0, rpcerr.New(rpcerr.InvalidArgument, "malformed int32")
	}
	return int32(protowire.DecodeZigZag(u)), nil
}

// EncodeInt64 encodes a signed 64-bit integer using zigzag varint ("sint64").
func EncodeInt64(v int64) []byte {
	return protowire.AppendVarint(nil, protowire.EncodeZigZag(v))
}

// DecodeInt64 decodes bytes produced by EncodeInt64.
func DecodeInt64(b []byte) (int64, error) {
	u, n := protowire.ConsumeVarint(b)
	if n < 0 || n != len(b) {
		return 0, rpcerr.New(rpcerr.InvalidArgument, "malformed int64")
	}
	return protowire.DecodeZigZag(u), nil
}

// EncodeUint32 encodes an unsigned 32-bit integer as a plain varint.
func EncodeUint32(v uint32) []byte {
	return protowire.AppendVarint(nil, uint64(v))
}

// DecodeUint32 decodes bytes produced by EncodeUint32.
func DecodeUint32(b []byte) (uint32, error) {
	u, n := protowire.ConsumeVarint(b)
	if n < 0 || n != len(b) {
		return 0, rpcerr.New(rpcerr.InvalidArgument, "malformed uint32")
	}
	return uint32(u), nil
}

// EncodeUint64 encodes an unsigned 64-bit integer as a plain varint. Used
// both for the uint64 primitive type and for object-reference handles
// (spec.md §4.A: "Object references are encoded as uint64 where 0 is null").
func EncodeUint64(v uint64) []byte {
	return protowire.AppendVarint(nil, v)
}

// DecodeUint64 decodes bytes produced by EncodeUint64.
func DecodeUint64(b []byte) (uint64, error) {
	u, n := protowire.ConsumeVarint(b)
	if n < 0 || n != len(b) {
		return 0, rpcerr.New(rpcerr.InvalidArgument, "malformed uint64")
	}
	return u, nil
}

// EncodeBool encodes a boolean as a varint 0/1.
func EncodeBool(v bool) []byte {
	u := uint64(0)
	if v {
		u = 1
	}
	return protowire.AppendVarint(nil, u)
}

// DecodeBool decodes bytes produced by EncodeBool.
func DecodeBool(b []byte) (bool, error) {
	u, n := protowire.ConsumeVarint(b)
	if n < 0 || n != len(b) {
		return false, rpcerr.New(rpcerr.InvalidArgument, "malformed bool")
	}
	return u != 0, nil
}

// EncodeFloat encodes a 32-bit float in protobuf's fixed32 form.
func EncodeFloat(v float32) []byte {
	return protowire.AppendFixed32(nil, math.Float32bits(v))
}

// DecodeFloat decodes bytes produced by EncodeFloat.
func DecodeFloat(b []byte) (float32, error) {
	u, n := protowire.ConsumeFixed32(b)
	if n < 0 || n != len(b) {
		return 0, rpcerr.New(rpcerr.InvalidArgument, "malformed float")
	}
	return math.Float32frombits(u), nil
}

// EncodeDouble encodes a 64-bit float in protobuf's fixed64 form.
func EncodeDouble(v float64) []byte {
	return protowire.AppendFixed64(nil, math.Float64bits(v))
}

// DecodeDouble decodes bytes produced by EncodeDouble.
func DecodeDouble(b []byte) (float64, error) {
	u, n := protowire.ConsumeFixed64(b)
	if n < 0 || n != len(b) {
		return 0, rpcerr.New(rpcerr.InvalidArgument, "malformed double")
	}
	return math.Float64frombits(u), nil
}

// EncodeString encodes a UTF-8 string in protobuf's length-delimited form,
// value bytes only (no length prefix beyond what the caller's own framing
// supplies — the Argument.value bytes IS the length-delimited payload, so
// here we emit raw UTF-8 bytes; the surrounding Argument/collection item
// already carries its own length).
func EncodeString(v string) []byte {
	return []byte(v)
}

// DecodeString decodes bytes produced by EncodeString.
func DecodeString(b []byte) (string, error) {
	return string(b), nil
}

// EncodeBytes is the identity function: a bytes value's wire form is
// itself.
func EncodeBytes(v []byte) []byte {
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

// DecodeBytes decodes bytes produced by EncodeBytes.
func DecodeBytes(b []byte) ([]byte, error) {
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// EncodeMessage is the identity function: a Message value's wire form is
// the protobuf-framed bytes of the embedded message itself (spec.md §4.A),
// already produced by whatever generated marshaler the caller holds — this
// package never interprets those bytes, only carries them.
func EncodeMessage(v []byte) []byte {
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

// DecodeMessage decodes bytes produced by EncodeMessage.
func DecodeMessage(b []byte) ([]byte, error) {
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// EncodeEnum encodes an enum as a signed 32-bit integer per spec.md §4.A
// ("Enums are encoded as signed 32-bit integers").
func EncodeEnum(v int32) []byte {
	return EncodeInt32(v)
}

// DecodeEnum decodes an enum ordinal. The caller is responsible for
// checking membership in the declared value set (InvalidArgument on a
// value outside it, per spec.md §4.A).
func DecodeEnum(b []byte) (int32, error) {
	return DecodeInt32(b)
}

// EncodeObjectRef encodes a 64-bit handle, 0 meaning null.
func EncodeObjectRef(handle uint64) []byte {
	return EncodeUint64(handle)
}

// DecodeObjectRef decodes a 64-bit handle.
func DecodeObjectRef(b []byte) (uint64, error) {
	return DecodeUint64(b)
}
