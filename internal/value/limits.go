package value

import "github.com/edgeiiot/opcua-runtime/internal/uaerrors"

// DefaultMaxByteStringLength is the implementation-configured cap on a
// single string or byte-string's wire length; encoding fails
// with BadEncodingLimitsExceeded above this size.
const DefaultMaxByteStringLength = 16 * 1024 * 1024

// CheckEncodingLimits validates that every string/byte-string element of v
// fits under maxLen, returning BadEncodingLimitsExceeded on the first
// offender. A maxLen of 0 selects DefaultMaxByteStringLength.
func (v Value) CheckEncodingLimits(maxLen int) error {
	if maxLen <= 0 {
		maxLen = DefaultMaxByteStringLength
	}
	switch v.typ {
	case TypeString, TypeXMLElement:
		for _, s := range v.strings {
			if len(s) > maxLen {
				return uaerrors.New(uaerrors.BadEncodingLimitsExceeded, "string exceeds maximum encoded length")
			}
		}
	case TypeByteString:
		for _, b := range v.bytes {
			if len(b) > maxLen {
				return uaerrors.New(uaerrors.BadEncodingLimitsExceeded, "byte string exceeds maximum encoded length")
			}
		}
	}
	return nil
}

// DecodeLengthPrefixed validates a wire length prefix against the bytes
// remaining in buf, returning BadDecodingError on underrun: a length
// prefix naming more bytes than remain in the buffer is a decoding error,
// not a panic or silent truncation. length of -1 denotes the OPC UA
// "null" string/array encoding and is always valid.
func DecodeLengthPrefixed(buf []byte, length int32) ([]byte, error) {
	if length < -1 {
		return nil, uaerrors.New(uaerrors.BadDecodingError, "negative length prefix")
	}
	if length == -1 {
		return nil, nil
	}
	n := int(length)
	if n > len(buf) {
		return nil, uaerrors.New(uaerrors.BadDecodingError, "length prefix exceeds available buffer")
	}
	return buf[:n], nil
}
