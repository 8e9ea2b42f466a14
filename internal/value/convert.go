package value

import "github.com/edgeiiot/opcua-runtime/internal/uaerrors"

// Widen converts a scalar numeric Value to the requested target type
// following the OPC UA built-in conversion matrix: widening
// between numeric types is lossless (e.g. UInt16 -> Int32); narrowing
// (e.g. Double -> Int32) truncates and fails with BadTypeMismatch if the
// truncated value is out of the target's range.
func (v Value) Widen(target BuiltinType) (Value, error) {
	if v.shape != ShapeScalar {
		return Value{}, uaerrors.New(uaerrors.BadTypeMismatch, "cannot widen a non-scalar value")
	}
	f, isFloat, i, isInt, u, isUint, ok := v.numericScalar()
	if !ok {
		if v.typ == target {
			return v, nil
		}
		return Value{}, uaerrors.Newf(uaerrors.BadTypeMismatch, "cannot convert %s to %s", v.typ, target)
	}

	var asFloat float64
	switch {
	case isFloat:
		asFloat = f
	case isInt:
		asFloat = float64(i)
	case isUint:
		asFloat = float64(u)
	}

	switch target {
	case TypeDouble:
		return Double(asFloat), nil
	case TypeFloat:
		return Float(float32(asFloat)), nil
	case TypeInt64:
		iv, err := toInt64Range(asFloat, isInt, i, isUint, u, -1<<63, 1<<63-1)
		if err != nil {
			return Value{}, err
		}
		return Int64(iv), nil
	case TypeInt32:
		iv, err := toInt64Range(asFloat, isInt, i, isUint, u, -1<<31, 1<<31-1)
		if err != nil {
			return Value{}, err
		}
		return Int32(int32(iv)), nil
	case TypeInt16:
		iv, err := toInt64Range(asFloat, isInt, i, isUint, u, -1<<15, 1<<15-1)
		if err != nil {
			return Value{}, err
		}
		return Int16(int16(iv)), nil
	case TypeSByte:
		iv, err := toInt64Range(asFloat, isInt, i, isUint, u, -128, 127)
		if err != nil {
			return Value{}, err
		}
		return SByte(int8(iv)), nil
	case TypeUInt64:
		uv, err := toUint64Range(asFloat, isInt, i, isUint, u, 1<<64-1)
		if err != nil {
			return Value{}, err
		}
		return UInt64(uv), nil
	case TypeUInt32:
		uv, err := toUint64Range(asFloat, isInt, i, isUint, u, 1<<32-1)
		if err != nil {
			return Value{}, err
		}
		return UInt32(uint32(uv)), nil
	case TypeUInt16:
		uv, err := toUint64Range(asFloat, isInt, i, isUint, u, 1<<16-1)
		if err != nil {
			return Value{}, err
		}
		return UInt16(uint16(uv)), nil
	case TypeByte:
		uv, err := toUint64Range(asFloat, isInt, i, isUint, u, 255)
		if err != nil {
			return Value{}, err
		}
		return Byte(uint8(uv)), nil
	default:
		return Value{}, uaerrors.Newf(uaerrors.BadTypeMismatch, "cannot convert %s to %s", v.typ, target)
	}
}

func (v Value) numericScalar() (f float64, isFloat bool, i int64, isInt bool, u uint64, isUint bool, ok bool) {
	switch v.typ {
	case TypeDouble:
		return v.doubles[0], true, 0, false, 0, false, true
	case TypeFloat:
		return float64(v.floats[0]), true, 0, false, 0, false, true
	case TypeSByte, TypeInt16, TypeInt32, TypeInt64:
		return 0, false, v.ints[0], true, 0, false, true
	case TypeByte, TypeUInt16, TypeUInt32, TypeUInt64:
		return 0, false, 0, false, v.uints[0], true, true
	default:
		return 0, false, 0, false, 0, false, false
	}
}

func toInt64Range(asFloat float64, isInt bool, i int64, isUint bool, u uint64, min, max int64) (int64, error) {
	var iv int64
	switch {
	case isInt:
		iv = i
	case isUint:
		if u > uint64(max) {
			return 0, uaerrors.New(uaerrors.BadTypeMismatch, "value out of range")
		}
		iv = int64(u)
	default:
		iv = int64(asFloat) // truncates toward zero
	}
	if iv < min || iv > max {
		return 0, uaerrors.New(uaerrors.BadTypeMismatch, "value out of range")
	}
	return iv, nil
}

func toUint64Range(asFloat float64, isInt bool, i int64, isUint bool, u uint64, max uint64) (uint64, error) {
	var uv uint64
	switch {
	case isUint:
		uv = u
	case isInt:
		if i < 0 {
			return 0, uaerrors.New(uaerrors.BadTypeMismatch, "negative value cannot convert to unsigned")
		}
		uv = uint64(i)
	default:
		if asFloat < 0 {
			return 0, uaerrors.New(uaerrors.BadTypeMismatch, "negative value cannot convert to unsigned")
		}
		uv = uint64(asFloat)
	}
	if uv > max {
		return 0, uaerrors.New(uaerrors.BadTypeMismatch, "value out of range")
	}
	return uv, nil
}
