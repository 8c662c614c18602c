package wire

import "fmt"

// Kind identifies one of the value shapes carried across the RPC boundary,
// per spec.md §3.
type Kind int

const (
	KindVoid Kind = iota
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindBool
	KindFloat
	KindDouble
	KindString
	KindBytes
	KindEnum
	KindMessage
	KindObjectRef
	KindList
	KindSet
	KindDictionary
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "Void"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindUint32:
		return "Uint32"
	case KindUint64:
		return "Uint64"
	case KindBool:
		return "Bool"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindString:
		return "String"
	case KindBytes:
		return "Bytes"
	case KindEnum:
		return "Enum"
	case KindMessage:
		return "Message"
	case KindObjectRef:
		return "ObjectRef"
	case KindList:
		return "List"
	case KindSet:
		return "Set"
	case KindDictionary:
		return "Dictionary"
	case KindTuple:
		return "Tuple"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// TypeDescriptor describes the declared type of a parameter, return value,
// or collection element, per spec.md §3. A descriptor is a tagged variant:
// most Kinds carry no further detail, List/Set carry one Element
// descriptor, Dictionary carries a Key and a Value descriptor, Tuple
// carries a fixed Items slice (arity = len(Items)), Enum carries the
// closed set of valid ordinals, Message carries the fully-qualified schema
// name of the embedded protobuf message, and ObjectRef carries the
// expected host class name (DecodeValue does not check a resolved object
// against it).
type TypeDescriptor struct {
	Kind Kind

	// Element is the item type for List and Set.
	Element *TypeDescriptor

	// Key and Value are the entry types for Dictionary.
	Key   *TypeDescriptor
	Value *TypeDescriptor

	// Items gives the per-position type of a Tuple; len(Items) is its
	// arity.
	Items []*TypeDescriptor

	// EnumValues is the closed set of valid ordinals for an Enum
	// descriptor. Decoding an ordinal outside this set is
	// InvalidArgument.
	EnumValues map[int32]struct{}

	// MessageName is the fully-qualified schema name of a Message
	// descriptor's embedded protobuf type, carried for diagnostics —
	// the wire form itself is schema-agnostic framed bytes, so nothing
	// here validates a message's internal field layout.
	MessageName string

	// ClassName names the host class an ObjectRef stands for. It is not
	// enforced: DecodeValue resolves any live handle whatever the type of
	// the object behind it.
	ClassName string
}

// Scalar builds a TypeDescriptor for any Kind that carries no further
// detail (every Kind except List, Set, Dictionary, Tuple, Enum, ObjectRef).
func Scalar(k Kind) *TypeDescriptor {
	return &TypeDescriptor{Kind: k}
}

// ListOf builds a List descriptor over elem.
func ListOf(elem *TypeDescriptor) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindList, Element: elem}
}

// SetOf builds a Set descriptor over elem.
func SetOf(elem *TypeDescriptor) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindSet, Element: elem}
}

// DictOf builds a Dictionary descriptor over key/value.
func DictOf(key, value *TypeDescriptor) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindDictionary, Key: key, Value: value}
}

// TupleOf builds a Tuple descriptor of the given fixed arity.
func TupleOf(items ...*TypeDescriptor) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindTuple, Items: items}
}

// EnumOf builds an Enum descriptor whose valid ordinals are values.
func EnumOf(values ...int32) *TypeDescriptor {
	set := make(map[int32]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return &TypeDescriptor{Kind: KindEnum, EnumValues: set}
}

// MessageOf builds a Message descriptor over the fully-qualified schema
// name of an embedded protobuf message (spec.md §3, §4.A: "Messages are
// encoded as their protobuf-framed bytes").
func MessageOf(schemaName string) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindMessage, MessageName: schemaName}
}

// ObjectRefTo builds an ObjectRef descriptor naming className. The name is
// not checked when a handle is decoded.
func ObjectRefTo(className string) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindObjectRef, ClassName: className}
}

// ObjectRefAny builds an ObjectRef descriptor accepting any class.
func ObjectRefAny() *TypeDescriptor {
	return &TypeDescriptor{Kind: KindObjectRef}
}
