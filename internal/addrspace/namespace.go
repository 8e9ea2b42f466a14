package addrspace

import (
	"sync"

	"github.com/edgeiiot/opcua-runtime/internal/ua"
)

// namespace is one densely-indexed partition of the address space.
// Structural mutation (createNode, addReference) takes ns.mu
// exclusively; modifyVariableNode only ever needs the target node's own
// lock. Lock ordering is always namespace -> node, never the reverse.
type namespace struct {
	mu    sync.RWMutex
	index uint16
	uri   string
	nodes map[ua.NodeID]*node
}

func newNamespace(index uint16, uri string) *namespace {
	return &namespace{
		index: index,
		uri:   uri,
		nodes: make(map[ua.NodeID]*node),
	}
}
