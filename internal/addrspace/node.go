// Package addrspace implements the in-memory node store: the
// typed node graph, its per-namespace indices, and the structural
// invariants that keep it consistent under concurrent access.
package addrspace

import (
	"sync"

	"github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/value"
)

// NodeClass is the OPC UA node class enumeration
type NodeClass uint8

const (
	ClassVariable NodeClass = iota
	ClassVariableType
	ClassObject
	ClassObjectType
	ClassReferenceType
	ClassDataType
	ClassView
	ClassMethod
)

// AccessLevel is a bit mask over read/write/history access.
type AccessLevel uint8

const (
	AccessRead AccessLevel = 1 << iota
	AccessWrite
	AccessHistoryRead
)

// MethodDescriptor names the argument shapes of a Method node;
// the bound callable itself lives in the method registry, keyed by NodeId.
type MethodDescriptor struct {
	InputArguments  []ArgumentDescriptor
	OutputArguments []ArgumentDescriptor
}

// ArgumentDescriptor names one formal argument of a method call.
type ArgumentDescriptor struct {
	Name        string
	DataType    value.BuiltinType
	ValueRank   int32
	Description string
}

// Reference is a directed, typed edge between two nodes. It is
// stored by value, never by pointer: endpoints are NodeIDs, resolved
// through the store's maps.
type Reference struct {
	Source        ua.NodeID
	ReferenceType ua.NodeID
	Target        ua.NodeID
	IsForward     bool
}

// node is the store's internal representation. Exported read access goes
// through NodeView, never through this type directly, so callers cannot
// mutate state outside the node's own locking.
type node struct {
	mu sync.RWMutex

	id          ua.NodeID
	class       NodeClass
	browseName  ua.QualifiedName
	displayName ua.LocalizedText
	accessLevel AccessLevel
	userAccess  AccessLevel
	writeMask   uint32

	// Variable / VariableType only.
	dataType          value.BuiltinType
	valueRank         int32
	arrayDimensions   []uint32
	current           value.Value
	minSamplingMillis float64

	// Method only.
	method *MethodDescriptor

	// forward/inverse references, keyed by reference-type NodeId for
	// quick per-type browse; within each bucket, insertion order is
	// preserved for deterministic browse output.
	forward map[ua.NodeID][]Reference
	inverse map[ua.NodeID][]Reference
}

// NodeView is a borrowed, read-only snapshot of a node: lookup returns a
// view of the node with no mutation allowed through it. It is a value
// copy taken under the node's read lock, safe to use after the call
// returns.
type NodeView struct {
	ID          ua.NodeID
	Class       NodeClass
	BrowseName  ua.QualifiedName
	DisplayName ua.LocalizedText
	AccessLevel AccessLevel
	UserAccess  AccessLevel
	WriteMask   uint32

	DataType          value.BuiltinType
	ValueRank         int32
	ArrayDimensions   []uint32
	Current           value.Value
	MinSamplingMillis float64

	Method *MethodDescriptor
}

func (n *node) view() NodeView {
	dims := make([]uint32, len(n.arrayDimensions))
	copy(dims, n.arrayDimensions)
	return NodeView{
		ID:                n.id,
		Class:             n.class,
		BrowseName:        n.browseName,
		DisplayName:       n.displayName,
		AccessLevel:       n.accessLevel,
		UserAccess:        n.userAccess,
		WriteMask:         n.writeMask,
		DataType:          n.dataType,
		ValueRank:         n.valueRank,
		ArrayDimensions:   dims,
		Current:           n.current,
		MinSamplingMillis: n.minSamplingMillis,
		Method:            n.method,
	}
}

// NodeItem is the caller-supplied description used to create a node.
type NodeItem struct {
	ID          ua.NodeID
	Class       NodeClass
	BrowseName  ua.QualifiedName
	DisplayName ua.LocalizedText
	AccessLevel AccessLevel
	UserAccess  AccessLevel
	WriteMask   uint32

	DataType          value.BuiltinType
	ValueRank         int32
	ArrayDimensions   []uint32
	Initial           value.Value
	MinSamplingMillis float64

	// Method, if non-nil, makes this a Method node descriptor; set by
	// Store.CreateMethodNode.
	Method *MethodDescriptor

	// Source, if non-null, causes createNode to add an Organizes
	// reference from Source to the new node.
	Source ua.NodeID
}

func newNode(item NodeItem) *node {
	dims := make([]uint32, len(item.ArrayDimensions))
	copy(dims, item.ArrayDimensions)
	return &node{
		id:                item.ID,
		class:             item.Class,
		browseName:        item.BrowseName,
		displayName:       item.DisplayName,
		accessLevel:       item.AccessLevel,
		userAccess:        item.UserAccess,
		writeMask:         item.WriteMask,
		dataType:          item.DataType,
		valueRank:         item.ValueRank,
		arrayDimensions:   dims,
		current:           item.Initial,
		minSamplingMillis: item.MinSamplingMillis,
		method:            item.Method,
		forward:           make(map[ua.NodeID][]Reference),
		inverse:           make(map[ua.NodeID][]Reference),
	}
}
