package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarVsArrayBoundary(t *testing.T) {
	scalar := Double(1.5)
	array := DoubleArray([]float64{1.5})
	assert.False(t, scalar.IsArray())
	assert.True(t, array.IsArray())
	assert.Equal(t, 1, scalar.Len())
	assert.Equal(t, 1, array.Len())
	assert.False(t, scalar.Equal(array))
}

func TestEqualNaNIsNeverEqual(t *testing.T) {
	a := Double(math.NaN())
	b := Double(math.NaN())
	assert.False(t, a.Equal(b))
	assert.True(t, Double(2.0).Equal(Double(2.0)))
}

func TestByteStringArrayRoundTrip(t *testing.T) {
	in := [][]byte{[]byte("abc"), []byte("xyz")}
	v := ByteStringArray(in)
	out, err := v.AsByteStringArray()
	require.NoError(t, err)
	assert.Equal(t, in, out)

	in[0][0] = 'Z'
	out2, _ := v.AsByteStringArray()
	assert.Equal(t, byte('a'), out2[0][0], "constructor must defensively copy")
}

func TestWidenLosslessUpcast(t *testing.T) {
	v := UInt16(42)
	wide, err := v.Widen(TypeInt32)
	require.NoError(t, err)
	n, err := wide.AsInt32()
	require.NoError(t, err)
	assert.EqualValues(t, 42, n)
}

func TestWidenNarrowingOutOfRangeFails(t *testing.T) {
	v := Double(1e20)
	_, err := v.Widen(TypeInt32)
	assert.Error(t, err)
}

func TestWidenNarrowingInRangeTruncates(t *testing.T) {
	v := Double(3.9)
	n, err := v.Widen(TypeInt32)
	require.NoError(t, err)
	iv, _ := n.AsInt32()
	assert.EqualValues(t, 3, iv)
}

func TestWidenNegativeToUnsignedFails(t *testing.T) {
	v := Int32(-1)
	_, err := v.Widen(TypeUInt32)
	assert.Error(t, err)
}

func TestCheckEncodingLimitsRejectsOversizedString(t *testing.T) {
	small := String(string(make([]byte, 4)))
	assert.NoError(t, small.CheckEncodingLimits(10))
	big := String(string(make([]byte, 100)))
	assert.Error(t, big.CheckEncodingLimits(10))
}

func TestDecodeLengthPrefixedUnderrun(t *testing.T) {
	buf := []byte("short")
	_, err := DecodeLengthPrefixed(buf, 100)
	assert.Error(t, err)

	got, err := DecodeLengthPrefixed(buf, -1)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = DecodeLengthPrefixed(buf, 5)
	require.NoError(t, err)
	assert.Equal(t, buf, got)
}
