// Package value implements the tagged-union Value type: every
// scalar or array OPC UA built-in value, constructors as the only way to
// produce one, widening conversions and transport-form encode/decode limits.
package value

import "github.com/edgeiiot/opcua-runtime/internal/ua"

// BuiltinType is the discriminant of a Value. It is fused with the payload
// inside Value itself: there is no way to construct a Value whose Type()
// disagrees with its payload.
type BuiltinType uint8

const (
	TypeBoolean BuiltinType = iota
	TypeSByte
	TypeByte
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUInt16
	TypeUInt32
	TypeUInt64
	TypeFloat
	TypeDouble
	TypeString
	TypeDateTime
	TypeGUID
	TypeByteString
	TypeXMLElement
	TypeNodeID
	TypeQualifiedName
	TypeLocalizedText
	TypeStatusCode
)

func (t BuiltinType) String() string {
	names := [...]string{
		"Boolean", "SByte", "Byte", "Int16", "Int32", "Int64",
		"UInt16", "UInt32", "UInt64", "Float", "Double", "String",
		"DateTime", "GUID", "ByteString", "XmlElement", "NodeId",
		"QualifiedName", "LocalizedText", "StatusCode",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "Unknown"
}

// Shape discriminates scalar vs one-dimensional array values. 2-D arrays
// are reserved but not implemented.
type Shape uint8

const (
	ShapeScalar Shape = iota
	ShapeArray
)

// Value is the tagged union over every built-in type, scalar or
// one-dimensional array.
type Value struct {
	typ   BuiltinType
	shape Shape
	// exactly one of the following slices/scalars is meaningful, selected
	// by typ; arrays reuse the same storage with len() giving the length.
	bools    []bool
	ints     []int64  // SByte, Int16, Int32, Int64 widened to int64 for storage
	uints    []uint64 // Byte, UInt16, UInt32, UInt64 widened to uint64
	floats   []float32
	doubles  []float64
	strings  []string
	dates    []int64 // ticks, see ua.ToUATicks/FromUATicks
	guids    []ua.NodeID
	bytes    [][]byte
	nodeIDs  []ua.NodeID
	qnames   []ua.QualifiedName
	ltexts   []ua.LocalizedText
	statuses []uint32
}

// Type returns the built-in type discriminant.
func (v Value) Type() BuiltinType { return v.typ }

// IsArray reports whether the value is a one-dimensional array rather than
// a scalar. A length-1 array is distinct from a scalar.
func (v Value) IsArray() bool { return v.shape == ShapeArray }

// Len returns the number of elements: 1 for a scalar, the array length for
// an array (0 is legal for an empty array).
func (v Value) Len() int {
	switch v.typ {
	case TypeBoolean:
		return len(v.bools)
	case TypeSByte, TypeInt16, TypeInt32, TypeInt64:
		return len(v.ints)
	case TypeByte, TypeUInt16, TypeUInt32, TypeUInt64:
		return len(v.uints)
	case TypeFloat:
		return len(v.floats)
	case TypeDouble:
		return len(v.doubles)
	case TypeString, TypeXMLElement:
		return len(v.strings)
	case TypeDateTime:
		return len(v.dates)
	case TypeGUID:
		return len(v.guids)
	case TypeByteString:
		return len(v.bytes)
	case TypeNodeID:
		return len(v.nodeIDs)
	case TypeQualifiedName:
		return len(v.qnames)
	case TypeLocalizedText:
		return len(v.ltexts)
	case TypeStatusCode:
		return len(v.statuses)
	default:
		return 0
	}
}
