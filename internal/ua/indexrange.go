package ua

import (
	"strconv"
	"strings"

	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
)

// IndexRange is a parsed numeric range: Hi is exclusive, so a single index
// "5" parses to {Lo: 5, Hi: 6} and a range "2:7" parses to {Lo: 2, Hi: 8}.
type IndexRange struct {
	Lo, Hi int
}

// ParseIndexRange parses the wire numeric-range grammar: "i" for a single
// index or "i:j" for an inclusive range, both non-negative with j >= i. An
// empty string is not a valid range; callers treat "" as "whole value"
// before ever calling this.
func ParseIndexRange(s string) (IndexRange, error) {
	if s == "" {
		return IndexRange{}, uaerrors.New(uaerrors.BadIndexRangeInvalid, "empty index range")
	}
	parts := strings.SplitN(s, ":", 2)
	lo, err := strconv.Atoi(parts[0])
	if err != nil || lo < 0 {
		return IndexRange{}, uaerrors.Newf(uaerrors.BadIndexRangeInvalid, "malformed index range %q", s)
	}
	if len(parts) == 1 {
		return IndexRange{Lo: lo, Hi: lo + 1}, nil
	}
	hi, err := strconv.Atoi(parts[1])
	if err != nil || hi < lo {
		return IndexRange{}, uaerrors.Newf(uaerrors.BadIndexRangeInvalid, "malformed index range %q", s)
	}
	return IndexRange{Lo: lo, Hi: hi + 1}, nil
}
