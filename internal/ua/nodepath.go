package ua

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
)

// NodePath is the parsed form of the grammar:
//
//	{ns;typeChar[;v=typeId]}browseName
//
// typeChar is one of I/S/B/G for Integer/String/Bytestring/GUID identifier
// variants; the optional v=typeId clause records the built-in type of the
// referenced Variable.
type NodePath struct {
	Namespace  uint16
	IdentType  IdentifierType
	ValueType  string // the "v=" clause content, empty if absent
	BrowseName string
}

// ParseNodePath parses the grammar, returning a parameter error
// (caller bug) on malformed input.
func ParseNodePath(s string) (NodePath, error) {
	open := strings.IndexByte(s, '{')
	close := strings.IndexByte(s, '}')
	if open != 0 || close < 0 || close <= open {
		return NodePath{}, uaerrors.Newf(uaerrors.BadInvalidArgument, "malformed node path %q", s)
	}

	header := s[open+1 : close]
	browseName := s[close+1:]
	if browseName == "" {
		return NodePath{}, uaerrors.Newf(uaerrors.BadInvalidArgument, "node path %q missing browse name", s)
	}

	parts := strings.Split(header, ";")
	if len(parts) < 2 {
		return NodePath{}, uaerrors.Newf(uaerrors.BadInvalidArgument, "node path %q missing ns/type", s)
	}

	ns, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return NodePath{}, uaerrors.Newf(uaerrors.BadInvalidArgument, "node path %q has invalid namespace: %v", s, err)
	}

	var identType IdentifierType
	switch parts[1] {
	case "I":
		identType = IdentifierNumeric
	case "S":
		identType = IdentifierString
	case "B":
		identType = IdentifierOpaque
	case "G":
		identType = IdentifierGUID
	default:
		return NodePath{}, uaerrors.Newf(uaerrors.BadInvalidArgument, "node path %q has unknown type char %q", s, parts[1])
	}

	var valueType string
	for _, p := range parts[2:] {
		if strings.HasPrefix(p, "v=") {
			valueType = strings.TrimPrefix(p, "v=")
		}
	}

	return NodePath{
		Namespace:  uint16(ns),
		IdentType:  identType,
		ValueType:  valueType,
		BrowseName: browseName,
	}, nil
}

// FormatNodePath renders a node's path alias:
// `{ns;typeChar[;v=typeId]}browseName`.
func FormatNodePath(p NodePath) string {
	var b strings.Builder
	b.WriteByte('{')
	fmt.Fprintf(&b, "%d;%c", p.Namespace, p.IdentType.char())
	if p.ValueType != "" {
		fmt.Fprintf(&b, ";v=%s", p.ValueType)
	}
	b.WriteByte('}')
	b.WriteString(p.BrowseName)
	return b.String()
}
