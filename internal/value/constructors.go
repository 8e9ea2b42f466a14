package value

import "github.com/edgeiiot/opcua-runtime/internal/ua"

// Scalar constructors. Each pins both the discriminant and the payload in
// one call so the two can never independently diverge.

func Boolean(b bool) Value    { return Value{typ: TypeBoolean, shape: ShapeScalar, bools: []bool{b}} }
func SByte(b int8) Value      { return Value{typ: TypeSByte, shape: ShapeScalar, ints: []int64{int64(b)}} }
func Byte(b uint8) Value      { return Value{typ: TypeByte, shape: ShapeScalar, uints: []uint64{uint64(b)}} }
func Int16(i int16) Value     { return Value{typ: TypeInt16, shape: ShapeScalar, ints: []int64{int64(i)}} }
func Int32(i int32) Value     { return Value{typ: TypeInt32, shape: ShapeScalar, ints: []int64{int64(i)}} }
func Int64(i int64) Value     { return Value{typ: TypeInt64, shape: ShapeScalar, ints: []int64{i}} }
func UInt16(u uint16) Value   { return Value{typ: TypeUInt16, shape: ShapeScalar, uints: []uint64{uint64(u)}} }
func UInt32(u uint32) Value   { return Value{typ: TypeUInt32, shape: ShapeScalar, uints: []uint64{uint64(u)}} }
func UInt64(u uint64) Value   { return Value{typ: TypeUInt64, shape: ShapeScalar, uints: []uint64{u}} }
func Float(f float32) Value   { return Value{typ: TypeFloat, shape: ShapeScalar, floats: []float32{f}} }
func Double(f float64) Value  { return Value{typ: TypeDouble, shape: ShapeScalar, doubles: []float64{f}} }
func String(s string) Value   { return Value{typ: TypeString, shape: ShapeScalar, strings: []string{s}} }
func XMLElement(s string) Value {
	return Value{typ: TypeXMLElement, shape: ShapeScalar, strings: []string{s}}
}
func DateTimeTicks(ticks int64) Value {
	return Value{typ: TypeDateTime, shape: ShapeScalar, dates: []int64{ticks}}
}
func ByteString(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{typ: TypeByteString, shape: ShapeScalar, bytes: [][]byte{cp}}
}
func NodeIDValue(id ua.NodeID) Value {
	return Value{typ: TypeNodeID, shape: ShapeScalar, nodeIDs: []ua.NodeID{id}}
}
func QualifiedNameValue(qn ua.QualifiedName) Value {
	return Value{typ: TypeQualifiedName, shape: ShapeScalar, qnames: []ua.QualifiedName{qn}}
}
func LocalizedTextValue(lt ua.LocalizedText) Value {
	return Value{typ: TypeLocalizedText, shape: ShapeScalar, ltexts: []ua.LocalizedText{lt}}
}
func StatusCodeValue(code uint32) Value {
	return Value{typ: TypeStatusCode, shape: ShapeScalar, statuses: []uint32{code}}
}

// Array constructors.

func BooleanArray(v []bool) Value  { return Value{typ: TypeBoolean, shape: ShapeArray, bools: v} }
func Int32Array(v []int32) Value {
	ints := make([]int64, len(v))
	for i, x := range v {
		ints[i] = int64(x)
	}
	return Value{typ: TypeInt32, shape: ShapeArray, ints: ints}
}
func DoubleArray(v []float64) Value {
	return Value{typ: TypeDouble, shape: ShapeArray, doubles: v}
}
func StringArray(v []string) Value {
	return Value{typ: TypeString, shape: ShapeArray, strings: v}
}
func ByteStringArray(v [][]byte) Value {
	cp := make([][]byte, len(v))
	for i, b := range v {
		c := make([]byte, len(b))
		copy(c, b)
		cp[i] = c
	}
	return Value{typ: TypeByteString, shape: ShapeArray, bytes: cp}
}
