package value

import (
	"github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
)

// Slice returns the elements [lo:hi) of an array value as a new array value
// of the same element type. The receiver must be an array value and
// 0 <= lo <= hi <= Len() must hold.
func (v Value) Slice(lo, hi int) (Value, error) {
	if !v.IsArray() {
		return Value{}, uaerrors.New(uaerrors.BadIndexRangeNoData, "index range on a scalar value")
	}
	if lo < 0 || hi < lo || hi > v.Len() {
		return Value{}, uaerrors.New(uaerrors.BadIndexRangeNoData, "index range out of bounds")
	}
	out := Value{typ: v.typ, shape: ShapeArray}
	switch v.typ {
	case TypeBoolean:
		out.bools = append([]bool{}, v.bools[lo:hi]...)
	case TypeSByte, TypeInt16, TypeInt32, TypeInt64:
		out.ints = append([]int64{}, v.ints[lo:hi]...)
	case TypeByte, TypeUInt16, TypeUInt32, TypeUInt64:
		out.uints = append([]uint64{}, v.uints[lo:hi]...)
	case TypeFloat:
		out.floats = append([]float32{}, v.floats[lo:hi]...)
	case TypeDouble:
		out.doubles = append([]float64{}, v.doubles[lo:hi]...)
	case TypeString, TypeXMLElement:
		out.strings = append([]string{}, v.strings[lo:hi]...)
	case TypeDateTime:
		out.dates = append([]int64{}, v.dates[lo:hi]...)
	case TypeGUID:
		out.guids = append([]ua.NodeID{}, v.guids[lo:hi]...)
	case TypeByteString:
		out.bytes = append([][]byte{}, v.bytes[lo:hi]...)
	case TypeNodeID:
		out.nodeIDs = append([]ua.NodeID{}, v.nodeIDs[lo:hi]...)
	case TypeQualifiedName:
		out.qnames = append([]ua.QualifiedName{}, v.qnames[lo:hi]...)
	case TypeLocalizedText:
		out.ltexts = append([]ua.LocalizedText{}, v.ltexts[lo:hi]...)
	case TypeStatusCode:
		out.statuses = append([]uint32{}, v.statuses[lo:hi]...)
	default:
		return Value{}, uaerrors.New(uaerrors.BadTypeMismatch, "unsupported type for index range")
	}
	return out, nil
}

// ReplaceSlice returns a copy of v with elements [lo:hi) replaced by sub.
// sub must be an array of the same element type carrying exactly hi-lo
// elements; the receiver must be an array with 0 <= lo <= hi <= Len().
func (v Value) ReplaceSlice(sub Value, lo, hi int) (Value, error) {
	if !v.IsArray() {
		return Value{}, uaerrors.New(uaerrors.BadIndexRangeNoData, "index range write on a scalar value")
	}
	if lo < 0 || hi < lo || hi > v.Len() {
		return Value{}, uaerrors.New(uaerrors.BadIndexRangeInvalid, "index range out of bounds")
	}
	if sub.typ != v.typ || sub.Len() != hi-lo {
		return Value{}, uaerrors.New(uaerrors.BadTypeMismatch, "replacement value does not match the index range shape")
	}
	out := v
	switch v.typ {
	case TypeBoolean:
		merged := append([]bool{}, v.bools...)
		copy(merged[lo:hi], sub.bools)
		out.bools = merged
	case TypeSByte, TypeInt16, TypeInt32, TypeInt64:
		merged := append([]int64{}, v.ints...)
		copy(merged[lo:hi], sub.ints)
		out.ints = merged
	case TypeByte, TypeUInt16, TypeUInt32, TypeUInt64:
		merged := append([]uint64{}, v.uints...)
		copy(merged[lo:hi], sub.uints)
		out.uints = merged
	case TypeFloat:
		merged := append([]float32{}, v.floats...)
		copy(merged[lo:hi], sub.floats)
		out.floats = merged
	case TypeDouble:
		merged := append([]float64{}, v.doubles...)
		copy(merged[lo:hi], sub.doubles)
		out.doubles = merged
	case TypeString, TypeXMLElement:
		merged := append([]string{}, v.strings...)
		copy(merged[lo:hi], sub.strings)
		out.strings = merged
	case TypeDateTime:
		merged := append([]int64{}, v.dates...)
		copy(merged[lo:hi], sub.dates)
		out.dates = merged
	case TypeGUID:
		merged := append([]ua.NodeID{}, v.guids...)
		copy(merged[lo:hi], sub.guids)
		out.guids = merged
	case TypeByteString:
		merged := append([][]byte{}, v.bytes...)
		copy(merged[lo:hi], sub.bytes)
		out.bytes = merged
	case TypeNodeID:
		merged := append([]ua.NodeID{}, v.nodeIDs...)
		copy(merged[lo:hi], sub.nodeIDs)
		out.nodeIDs = merged
	case TypeQualifiedName:
		merged := append([]ua.QualifiedName{}, v.qnames...)
		copy(merged[lo:hi], sub.qnames)
		out.qnames = merged
	case TypeLocalizedText:
		merged := append([]ua.LocalizedText{}, v.ltexts...)
		copy(merged[lo:hi], sub.ltexts)
		out.ltexts = merged
	case TypeStatusCode:
		merged := append([]uint32{}, v.statuses...)
		copy(merged[lo:hi], sub.statuses)
		out.statuses = merged
	default:
		return Value{}, uaerrors.New(uaerrors.BadTypeMismatch, "unsupported type for index range")
	}
	return out, nil
}
