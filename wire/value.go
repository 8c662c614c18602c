// value.go implements recursive encode/decode over a TypeDescriptor: the
// part of Component A that turns a typed Go value into the Argument/return
// bytes on the wire and back, including the fixed List/Set/Dictionary/Tuple
// message shapes and ObjectRef handle resolution.
package wire

import (
	"sort"

	"github.com/jeeves-cluster-organization/missionrpc/rpcerr"
)

// HandleResolver is the seam between the wire codec and the object store
// (Component B), kept as an interface here so wire has no import-time
// dependency on objects — objects.Store implements this directly.
type HandleResolver interface {
	// Resolve returns the host object bound to handle, or
	// rpcerr.UnknownHandle if no such handle is live.
	Resolve(handle uint64) (any, error)
	// HandleFor returns the handle bound to obj, minting one on first
	// sight.
	HandleFor(obj any) uint64
}

// EncodeValue encodes v according to desc, using resolver to turn host
// objects into ObjectRef handles.
func EncodeValue(desc *TypeDescriptor, v any, resolver HandleResolver) ([]byte, error) {
	switch desc.Kind {
	case KindVoid:
		return nil, nil
	case KindInt32:
		n, ok := v.(int32)
		if !ok {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "expected int32, got %T", v)
		}
		return EncodeInt32(n), nil
	case KindInt64:
		n, ok := v.(int64)
		if !ok {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "expected int64, got %T", v)
		}
		return EncodeInt64(n), nil
	case KindUint32:
		n, ok := v.(uint32)
		if !ok {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "expected uint32, got %T", v)
		}
		return EncodeUint32(n), nil
	case KindUint64:
		n, ok := v.(uint64)
		if !ok {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "expected uint64, got %T", v)
		}
		return EncodeUint64(n), nil
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "expected bool, got %T", v)
		}
		return EncodeBool(b), nil
	case KindFloat:
		f, ok := v.(float32)
		if !ok {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "expected float32, got %T", v)
		}
		return EncodeFloat(f), nil
	case KindDouble:
		f, ok := v.(float64)
		if !ok {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "expected float64, got %T", v)
		}
		return EncodeDouble(f), nil
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "expected string, got %T", v)
		}
		return EncodeString(s), nil
	case KindBytes:
		b, ok := v.([]byte)
		if !ok {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "expected bytes, got %T", v)
		}
		return EncodeBytes(b), nil
	case KindEnum:
		n, ok := v.(int32)
		if !ok {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "expected enum ordinal, got %T", v)
		}
		if _, ok := desc.EnumValues[n]; len(desc.EnumValues) > 0 && !ok {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "enum ordinal %d not in declared value set", n)
		}
		return EncodeEnum(n), nil
	case KindMessage:
		b, ok := v.([]byte)
		if !ok {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "expected framed message bytes for %s, got %T", desc.MessageName, v)
		}
		return EncodeMessage(b), nil
	case KindObjectRef:
		if v == nil {
			return EncodeObjectRef(0), nil
		}
		return EncodeObjectRef(resolver.HandleFor(v)), nil
	case KindList:
		return encodeSequence(desc.Element, v, resolver, false)
	case KindSet:
		return encodeSequence(desc.Element, v, resolver, true)
	case KindDictionary:
		return encodeDictionaryValue(desc, v, resolver)
	case KindTuple:
		return encodeTupleValue(desc, v, resolver)
	default:
		return nil, rpcerr.New(rpcerr.InvalidArgument, "unsupported type descriptor kind %v", desc.Kind)
	}
}

// DecodeValue decodes b according to desc, using resolver to turn
// ObjectRef handles back into host objects.
func DecodeValue(desc *TypeDescriptor, b []byte, resolver HandleResolver) (any, error) {
	switch desc.Kind {
	case KindVoid:
		return nil, nil
	case KindInt32:
		return DecodeInt32(b)
	case KindInt64:
		return DecodeInt64(b)
	case KindUint32:
		return DecodeUint32(b)
	case KindUint64:
		return DecodeUint64(b)
	case KindBool:
		return DecodeBool(b)
	case KindFloat:
		return DecodeFloat(b)
	case KindDouble:
		return DecodeDouble(b)
	case KindString:
		return DecodeString(b)
	case KindBytes:
		return DecodeBytes(b)
	case KindEnum:
		n, err := DecodeEnum(b)
		if err != nil {
			return nil, err
		}
		if _, ok := desc.EnumValues[n]; len(desc.EnumValues) > 0 && !ok {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "enum ordinal %d not in declared value set", n)
		}
		return n, nil
	case KindMessage:
		return DecodeMessage(b)
	case KindObjectRef:
		handle, err := DecodeObjectRef(b)
		if err != nil {
			return nil, err
		}
		if handle == 0 {
			return nil, nil
		}
		return resolver.Resolve(handle)
	case KindList:
		return decodeSequence(desc.Element, b, resolver, false)
	case KindSet:
		return decodeSequence(desc.Element, b, resolver, true)
	case KindDictionary:
		return decodeDictionaryValue(desc, b, resolver)
	case KindTuple:
		return decodeTupleValue(desc, b, resolver)
	default:
		return nil, rpcerr.New(rpcerr.InvalidArgument, "unsupported type descriptor kind %v", desc.Kind)
	}
}

func encodeSequence(elem *TypeDescriptor, v any, resolver HandleResolver, dedupe bool) ([]byte, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, rpcerr.New(rpcerr.InvalidArgument, "expected sequence, got %T", v)
	}
	encoded := make([][]byte, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		b, err := EncodeValue(elem, item, resolver)
		if err != nil {
			return nil, err
		}
		if dedupe {
			if _, dup := seen[string(b)]; dup {
				continue
			}
			seen[string(b)] = struct{}{}
		}
		encoded = append(encoded, b)
	}
	return EncodeItemList(encoded), nil
}

func decodeSequence(elem *TypeDescriptor, b []byte, resolver HandleResolver, dedupe bool) ([]any, error) {
	raw, err := DecodeItemList(b)
	if err != nil {
		return nil, err
	}
	items := make([]any, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		if dedupe {
			if _, dup := seen[string(r)]; dup {
				continue
			}
			seen[string(r)] = struct{}{}
		}
		v, err := DecodeValue(elem, r, resolver)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func encodeDictionaryValue(desc *TypeDescriptor, v any, resolver HandleResolver) ([]byte, error) {
	m, ok := v.(map[any]any)
	if !ok {
		return nil, rpcerr.New(rpcerr.InvalidArgument, "expected dictionary, got %T", v)
	}
	entries := make([]dictEntry, 0, len(m))
	for k, val := range m {
		kb, err := EncodeValue(desc.Key, k, resolver)
		if err != nil {
			return nil, err
		}
		vb, err := EncodeValue(desc.Value, val, resolver)
		if err != nil {
			return nil, err
		}
		entries = append(entries, dictEntry{Key: kb, Value: vb})
	}
	// Deterministic wire output regardless of Go map iteration order.
	sort.Slice(entries, func(i, j int) bool { return string(entries[i].Key) < string(entries[j].Key) })
	return EncodeDictionary(entries), nil
}

func decodeDictionaryValue(desc *TypeDescriptor, b []byte, resolver HandleResolver) (map[any]any, error) {
	raw, err := DecodeDictionary(b)
	if err != nil {
		return nil, err
	}
	out := make(map[any]any, len(raw))
	seenKeys := make(map[string]struct{}, len(raw))
	for _, entry := range raw {
		if _, dup := seenKeys[string(entry.Key)]; dup {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "duplicate dictionary key on the wire")
		}
		seenKeys[string(entry.Key)] = struct{}{}
		k, err := DecodeValue(desc.Key, entry.Key, resolver)
		if err != nil {
			return nil, err
		}
		val, err := DecodeValue(desc.Value, entry.Value, resolver)
		if err != nil {
			return nil, err
		}
		out[k] = val
	}
	return out, nil
}

func encodeTupleValue(desc *TypeDescriptor, v any, resolver HandleResolver) ([]byte, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, rpcerr.New(rpcerr.InvalidArgument, "expected tuple, got %T", v)
	}
	if len(items) != len(desc.Items) {
		return nil, rpcerr.New(rpcerr.InvalidArgument, "tuple arity mismatch: expected %d, got %d", len(desc.Items), len(items))
	}
	encoded := make([][]byte, len(items))
	for i, item := range items {
		b, err := EncodeValue(desc.Items[i], item, resolver)
		if err != nil {
			return nil, err
		}
		encoded[i] = b
	}
	return EncodeTuple(encoded), nil
}

func decodeTupleValue(desc *TypeDescriptor, b []byte, resolver HandleResolver) ([]any, error) {
	raw, err := DecodeTuple(b)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(desc.Items) {
		return nil, rpcerr.New(rpcerr.InvalidArgument, "tuple arity mismatch: expected %d, got %d", len(desc.Items), len(raw))
	}
	items := make([]any, len(raw))
	for i, r := range raw {
		v, err := DecodeValue(desc.Items[i], r, resolver)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return items, nil
}
