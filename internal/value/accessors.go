package value

import (
	"github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
)

// AsDouble returns the scalar Double payload, or an error if the value is
// not a scalar Double.
func (v Value) AsDouble() (float64, error) {
	if v.typ != TypeDouble || v.shape != ShapeScalar {
		return 0, uaerrors.New(uaerrors.BadTypeMismatch, "value is not a scalar Double")
	}
	return v.doubles[0], nil
}

// AsInt32 returns the scalar Int32 payload.
func (v Value) AsInt32() (int32, error) {
	if v.typ != TypeInt32 || v.shape != ShapeScalar {
		return 0, uaerrors.New(uaerrors.BadTypeMismatch, "value is not a scalar Int32")
	}
	return int32(v.ints[0]), nil
}

// AsString returns the scalar String payload.
func (v Value) AsString() (string, error) {
	if v.typ != TypeString || v.shape != ShapeScalar {
		return "", uaerrors.New(uaerrors.BadTypeMismatch, "value is not a scalar String")
	}
	return v.strings[0], nil
}

// AsByteStringArray returns the ByteString array payload.
func (v Value) AsByteStringArray() ([][]byte, error) {
	if v.typ != TypeByteString || v.shape != ShapeArray {
		return nil, uaerrors.New(uaerrors.BadTypeMismatch, "value is not a ByteString array")
	}
	out := make([][]byte, len(v.bytes))
	for i, b := range v.bytes {
		cp := make([]byte, len(b))
		copy(cp, b)
		out[i] = cp
	}
	return out, nil
}

// AsNodeID returns the scalar NodeId payload.
func (v Value) AsNodeID() (ua.NodeID, error) {
	if v.typ != TypeNodeID || v.shape != ShapeScalar {
		return ua.NodeID{}, uaerrors.New(uaerrors.BadTypeMismatch, "value is not a scalar NodeId")
	}
	return v.nodeIDs[0], nil
}

// Equal implements deep elementwise equality with NaN treated as unequal to
// itself.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ || v.shape != o.shape || v.Len() != o.Len() {
		return false
	}
	switch v.typ {
	case TypeBoolean:
		return sliceEqual(v.bools, o.bools)
	case TypeSByte, TypeInt16, TypeInt32, TypeInt64:
		return sliceEqual(v.ints, o.ints)
	case TypeByte, TypeUInt16, TypeUInt32, TypeUInt64:
		return sliceEqual(v.uints, o.uints)
	case TypeFloat:
		return floatSliceEqual32(v.floats, o.floats)
	case TypeDouble:
		return floatSliceEqual64(v.doubles, o.doubles)
	case TypeString, TypeXMLElement:
		return sliceEqual(v.strings, o.strings)
	case TypeDateTime:
		return sliceEqual(v.dates, o.dates)
	case TypeGUID, TypeNodeID:
		a, b := v.nodeIDs, o.nodeIDs
		if v.typ == TypeGUID {
			a, b = v.guids, o.guids
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	case TypeByteString:
		for i := range v.bytes {
			if string(v.bytes[i]) != string(o.bytes[i]) {
				return false
			}
		}
		return true
	case TypeQualifiedName:
		return sliceEqual(v.qnames, o.qnames)
	case TypeLocalizedText:
		return sliceEqual(v.ltexts, o.ltexts)
	case TypeStatusCode:
		return sliceEqual(v.statuses, o.statuses)
	default:
		return false
	}
}

func sliceEqual[T comparable](a, b []T) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func floatSliceEqual32(a, b []float32) bool {
	for i := range a {
		if a[i] != a[i] || b[i] != b[i] { // NaN != NaN
			return false
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func floatSliceEqual64(a, b []float64) bool {
	for i := range a {
		if a[i] != a[i] || b[i] != b[i] {
			return false
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
