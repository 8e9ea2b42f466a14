package ua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
)

func TestParseIndexRangeSingleIndex(t *testing.T) {
	rng, err := ParseIndexRange("5")
	require.NoError(t, err)
	assert.Equal(t, IndexRange{Lo: 5, Hi: 6}, rng)
}

func TestParseIndexRangeInclusiveRange(t *testing.T) {
	rng, err := ParseIndexRange("2:7")
	require.NoError(t, err)
	assert.Equal(t, IndexRange{Lo: 2, Hi: 8}, rng)
}

func TestParseIndexRangeRejectsEmpty(t *testing.T) {
	_, err := ParseIndexRange("")
	require.Error(t, err)
	assert.Equal(t, uaerrors.BadIndexRangeInvalid, uaerrors.CodeOf(err))
}

func TestParseIndexRangeRejectsDescendingRange(t *testing.T) {
	_, err := ParseIndexRange("7:2")
	require.Error(t, err)
	assert.Equal(t, uaerrors.BadIndexRangeInvalid, uaerrors.CodeOf(err))
}

func TestParseIndexRangeRejectsNonNumeric(t *testing.T) {
	_, err := ParseIndexRange("x:y")
	require.Error(t, err)
	assert.Equal(t, uaerrors.BadIndexRangeInvalid, uaerrors.CodeOf(err))
}

func TestParseIndexRangeRejectsNegative(t *testing.T) {
	_, err := ParseIndexRange("-1")
	require.Error(t, err)
	assert.Equal(t, uaerrors.BadIndexRangeInvalid, uaerrors.CodeOf(err))
}
