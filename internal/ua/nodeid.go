// Package ua holds the wire-agnostic address-space primitives shared by
// every other package: NodeID, QualifiedName, LocalizedText and the
// node-path string grammar
package ua

import (
	"fmt"

	"github.com/google/uuid"
)

// IdentifierType discriminates the four NodeID identifier shapes. It is a
// closed sum type: constructors are the only way to produce a NodeID, so
// discriminant and payload can never independently diverge.
type IdentifierType uint8

const (
	IdentifierNumeric IdentifierType = iota
	IdentifierString
	IdentifierGUID
	IdentifierOpaque
)

func (t IdentifierType) char() byte {
	switch t {
	case IdentifierNumeric:
		return 'I'
	case IdentifierString:
		return 'S'
	case IdentifierGUID:
		return 'G'
	case IdentifierOpaque:
		return 'B'
	default:
		return '?'
	}
}

// NodeID is a (namespace index, identifier) pair. All fields
// are comparable (the opaque identifier is held as a string, not a slice)
// so NodeID can be used directly as a map key and with ==, the way the
// rest of the runtime relies on.
type NodeID struct {
	Namespace uint16
	kind      IdentifierType
	numeric   uint32
	str       string
	guid      uuid.UUID
	opaque    string
}

// NullNodeID is NodeId 0/0, the OPC UA null id.
var NullNodeID = NodeID{}

// NewNumericNodeID builds an identifier-numeric NodeID.
func NewNumericNodeID(ns uint16, id uint32) NodeID {
	return NodeID{Namespace: ns, kind: IdentifierNumeric, numeric: id}
}

// NewStringNodeID builds an identifier-string NodeID.
func NewStringNodeID(ns uint16, id string) NodeID {
	return NodeID{Namespace: ns, kind: IdentifierString, str: id}
}

// NewGUIDNodeID builds an identifier-GUID NodeID.
func NewGUIDNodeID(ns uint16, id uuid.UUID) NodeID {
	return NodeID{Namespace: ns, kind: IdentifierGUID, guid: id}
}

// NewOpaqueNodeID builds an identifier-opaque (byte string) NodeID.
func NewOpaqueNodeID(ns uint16, id []byte) NodeID {
	return NodeID{Namespace: ns, kind: IdentifierOpaque, opaque: string(id)}
}

// Type returns the identifier variant.
func (n NodeID) Type() IdentifierType { return n.kind }

// Numeric returns the numeric identifier; only meaningful when Type() is
// IdentifierNumeric.
func (n NodeID) Numeric() uint32 { return n.numeric }

// String returns the string identifier; only meaningful when Type() is
// IdentifierString. Named StringID to avoid colliding with fmt.Stringer.
func (n NodeID) StringID() string { return n.str }

// GUID returns the GUID identifier; only meaningful when Type() is
// IdentifierGUID.
func (n NodeID) GUID() uuid.UUID { return n.guid }

// Opaque returns the byte-string identifier; only meaningful when Type() is
// IdentifierOpaque.
func (n NodeID) Opaque() []byte { return []byte(n.opaque) }

// IsNull reports whether this is NodeId 0/0 with a zero-value identifier.
func (n NodeID) IsNull() bool {
	return n.Namespace == 0 && n.kind == IdentifierNumeric && n.numeric == 0
}

// Equal implements the equality rule: namespace and identifier
// variant and identifier content all match.
func (n NodeID) Equal(o NodeID) bool {
	if n.Namespace != o.Namespace || n.kind != o.kind {
		return false
	}
	switch n.kind {
	case IdentifierNumeric:
		return n.numeric == o.numeric
	case IdentifierString:
		return n.str == o.str
	case IdentifierGUID:
		return n.guid == o.guid
	case IdentifierOpaque:
		return n.opaque == o.opaque
	default:
		return false
	}
}

// String renders a NodeID for logging/diagnostics, not the wire form.
func (n NodeID) String() string {
	switch n.kind {
	case IdentifierNumeric:
		return fmt.Sprintf("ns=%d;i=%d", n.Namespace, n.numeric)
	case IdentifierString:
		return fmt.Sprintf("ns=%d;s=%s", n.Namespace, n.str)
	case IdentifierGUID:
		return fmt.Sprintf("ns=%d;g=%s", n.Namespace, n.guid)
	case IdentifierOpaque:
		return fmt.Sprintf("ns=%d;b=%x", n.Namespace, n.opaque)
	default:
		return "ns=?;?"
	}
}

// QualifiedName is a (namespace index, name) pair.
type QualifiedName struct {
	NamespaceIndex uint16
	Name           string
}

// LocalizedText is a (locale, text) pair. Strings carry an
// explicit length via Go's native string representation and may contain
// embedded zero bytes; they are never null-terminated.
type LocalizedText struct {
	Locale string
	Text   string
}
