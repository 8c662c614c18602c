package wire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/jeeves-cluster-organization/missionrpc/rpcerr"
)

// Field numbers for the fixed collection schemas in spec.md §4.A/§6.
const (
	fieldListItems      = protowire.Number(1) // List.items, Set.items
	fieldDictEntries    = protowire.Number(1) // Dictionary.entries
	fieldDictEntryKey   = protowire.Number(1) // DictionaryEntry.key
	fieldDictEntryValue = protowire.Number(2) // DictionaryEntry.value
	fieldTupleItems     = protowire.Number(1) // Tuple.items
)

// EncodeItemList encodes a `{ repeated bytes items }` message — the shared
// wire shape of List and Set (spec.md §4.A).
func EncodeItemList(items [][]byte) []byte {
	var out []byte
	for _, item := range items {
		out = protowire.AppendTag(out, fieldListItems, protowire.BytesType)
		out = protowire.AppendBytes(out, item)
	}
	return out
}

// DecodeItemList decodes a `{ repeated bytes items }` message.
func DecodeItemList(b []byte) ([][]byte, error) {
	var items [][]byte
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "malformed collection tag")
		}
		b = b[n:]
		if num != fieldListItems || typ != protowire.BytesType {
			skip := protowire.ConsumeFieldValue(num, typ, b)
			if skip < 0 {
				return nil, rpcerr.New(rpcerr.InvalidArgument, "malformed collection field")
			}
			b = b[skip:]
			continue
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "malformed collection item")
		}
		item := make([]byte, len(v))
		copy(item, v)
		items = append(items, item)
		b = b[n:]
	}
	return items, nil
}

// dictEntry is one key/value pair as it appears on the wire.
type dictEntry struct {
	Key   []byte
	Value []byte
}

func encodeDictEntry(e dictEntry) []byte {
	var out []byte
	out = protowire.AppendTag(out, fieldDictEntryKey, protowire.BytesType)
	out = protowire.AppendBytes(out, e.Key)
	out = protowire.AppendTag(out, fieldDictEntryValue, protowire.BytesType)
	out = protowire.AppendBytes(out, e.Value)
	return out
}

func decodeDictEntry(b []byte) (dictEntry, error) {
	var e dictEntry
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return e, rpcerr.New(rpcerr.InvalidArgument, "malformed dict entry tag")
		}
		b = b[n:]
		switch {
		case num == fieldDictEntryKey && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return e, rpcerr.New(rpcerr.InvalidArgument, "malformed dict entry key")
			}
			e.Key = append([]byte(nil), v...)
			b = b[n:]
		case num == fieldDictEntryValue && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return e, rpcerr.New(rpcerr.InvalidArgument, "malformed dict entry value")
			}
			e.Value = append([]byte(nil), v...)
			b = b[n:]
		default:
			skip := protowire.ConsumeFieldValue(num, typ, b)
			if skip < 0 {
				return e, rpcerr.New(rpcerr.InvalidArgument, "malformed dict entry field")
			}
			b = b[skip:]
		}
	}
	return e, nil
}

// EncodeDictionary encodes a `Dictionary { repeated Entry entries }`
// message from already key/value-encoded entries. The caller (wire/value.go)
// is responsible for uniqueness checking on decode — see DecodeDictionary.
func EncodeDictionary(entries []dictEntry) []byte {
	var out []byte
	for _, e := range entries {
		out = protowire.AppendTag(out, fieldDictEntries, protowire.BytesType)
		out = protowire.AppendBytes(out, encodeDictEntry(e))
	}
	return out
}

// DecodeDictionary decodes a Dictionary message into its raw entries,
// without interpreting key/value bytes as any particular type — that is
// the caller's job once it knows the declared key/value TypeDescriptor.
func DecodeDictionary(b []byte) ([]dictEntry, error) {
	var entries []dictEntry
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "malformed dictionary tag")
		}
		b = b[n:]
		if num != fieldDictEntries || typ != protowire.BytesType {
			skip := protowire.ConsumeFieldValue(num, typ, b)
			if skip < 0 {
				return nil, rpcerr.New(rpcerr.InvalidArgument, "malformed dictionary field")
			}
			b = b[skip:]
			continue
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, rpcerr.New(rpcerr.InvalidArgument, "malformed dictionary entry")
		}
		entry, err := decodeDictEntry(v)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		b = b[n:]
	}
	return entries, nil
}

// EncodeTuple encodes a `Tuple { repeated bytes items }` message. Arity is
// enforced by the caller (wire/value.go), not here.
func EncodeTuple(items [][]byte) []byte {
	var out []byte
	for _, item := range items {
		out = protowire.AppendTag(out, fieldTupleItems, protowire.BytesType)
		out = protowire.AppendBytes(out, item)
	}
	return out
}

// DecodeTuple decodes a Tuple message.
func DecodeTuple(b []byte) ([][]byte, error) {
	return DecodeItemList(b) // identical wire shape, field number 1, repeated bytes
}
