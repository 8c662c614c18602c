package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResolver is a minimal in-memory HandleResolver for wire-level tests,
// standing in for objects.Store so these tests do not depend on package
// objects.
type fakeResolver struct {
	byHandle map[uint64]any
	byObject map[any]uint64
	next     uint64
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{byHandle: map[uint64]any{}, byObject: map[any]uint64{}, next: 1}
}

func (f *fakeResolver) Resolve(handle uint64) (any, error) {
	v, ok := f.byHandle[handle]
	if !ok {
		return nil, assertUnknownHandle(handle)
	}
	return v, nil
}

func (f *fakeResolver) HandleFor(obj any) uint64 {
	if h, ok := f.byObject[obj]; ok {
		return h
	}
	h := f.next
	f.next++
	f.byObject[obj] = h
	f.byHandle[h] = obj
	return h
}

func assertUnknownHandle(handle uint64) error {
	return &unknownHandleErr{handle}
}

type unknownHandleErr struct{ handle uint64 }

func (e *unknownHandleErr) Error() string { return "unknown handle" }

func TestEncodeDecodeScalarValue(t *testing.T) {
	r := newFakeResolver()
	b, err := EncodeValue(Scalar(KindString), "vessel-1", r)
	require.NoError(t, err)
	v, err := DecodeValue(Scalar(KindString), b, r)
	require.NoError(t, err)
	assert.Equal(t, "vessel-1", v)
}

func TestEncodeDecodeList(t *testing.T) {
	r := newFakeResolver()
	desc := ListOf(Scalar(KindInt32))
	in := []any{int32(1), int32(2), int32(3)}
	b, err := EncodeValue(desc, in, r)
	require.NoError(t, err)
	out, err := DecodeValue(desc, b, r)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncodeSetDeduplicates(t *testing.T) {
	r := newFakeResolver()
	desc := SetOf(Scalar(KindInt32))
	in := []any{int32(1), int32(1), int32(2)}
	b, err := EncodeValue(desc, in, r)
	require.NoError(t, err)
	out, err := DecodeValue(desc, b, r)
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), int32(2)}, out)
}

func TestEncodeDecodeDictionary(t *testing.T) {
	r := newFakeResolver()
	desc := DictOf(Scalar(KindString), Scalar(KindInt32))
	in := map[any]any{"a": int32(1), "b": int32(2)}
	b, err := EncodeValue(desc, in, r)
	require.NoError(t, err)
	out, err := DecodeValue(desc, b, r)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeDictionaryRejectsDuplicateKey(t *testing.T) {
	entries := []dictEntry{
		{Key: EncodeString("a"), Value: EncodeInt32(1)},
		{Key: EncodeString("a"), Value: EncodeInt32(2)},
	}
	b := EncodeDictionary(entries)
	r := newFakeResolver()
	_, err := DecodeValue(DictOf(Scalar(KindString), Scalar(KindInt32)), b, r)
	require.Error(t, err)
}

func TestEncodeDecodeTuple(t *testing.T) {
	r := newFakeResolver()
	desc := TupleOf(Scalar(KindString), Scalar(KindBool))
	in := []any{"x", true}
	b, err := EncodeValue(desc, in, r)
	require.NoError(t, err)
	out, err := DecodeValue(desc, b, r)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestTupleArityMismatch(t *testing.T) {
	r := newFakeResolver()
	desc := TupleOf(Scalar(KindString), Scalar(KindBool))
	_, err := EncodeValue(desc, []any{"only one"}, r)
	require.Error(t, err)
}

func TestObjectRefRoundtrip(t *testing.T) {
	r := newFakeResolver()
	desc := ObjectRefAny()
	type vessel struct{ name string }
	obj := &vessel{name: "Kerbal X"}

	b, err := EncodeValue(desc, obj, r)
	require.NoError(t, err)

	out, err := DecodeValue(desc, b, r)
	require.NoError(t, err)
	assert.Same(t, obj, out)
}

func TestObjectRefNullRoundtrip(t *testing.T) {
	r := newFakeResolver()
	desc := ObjectRefAny()

	b, err := EncodeValue(desc, nil, r)
	require.NoError(t, err)

	out, err := DecodeValue(desc, b, r)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestEnumRejectsValueOutsideDeclaredSet(t *testing.T) {
	r := newFakeResolver()
	desc := EnumOf(0, 1, 2)
	_, err := EncodeValue(desc, int32(5), r)
	require.Error(t, err)

	b := EncodeEnum(5)
	_, err = DecodeValue(desc, b, r)
	require.Error(t, err)
}

func TestMessageRoundtripsFramedBytes(t *testing.T) {
	r := newFakeResolver()
	desc := MessageOf("krpc.schema.ProcedureCall")
	framed := []byte{0x0a, 0x03, 'f', 'o', 'o'}

	b, err := EncodeValue(desc, framed, r)
	require.NoError(t, err)
	assert.Equal(t, framed, b)

	out, err := DecodeValue(desc, b, r)
	require.NoError(t, err)
	assert.Equal(t, framed, out)
}

func TestMessageEncodeRejectsNonBytes(t *testing.T) {
	r := newFakeResolver()
	_, err := EncodeValue(MessageOf("krpc.schema.ProcedureCall"), "not bytes", r)
	require.Error(t, err)
}
