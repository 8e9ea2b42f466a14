// Package method implements the method registry: the binding
// between a Method node's NodeId and an in-process callable, plus input
// validation ahead of dispatch.
package method

import (
	"sync"

	"github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
	"github.com/edgeiiot/opcua-runtime/internal/value"
)

// Callable is invoked by the service dispatcher with a vector of decoded
// input Values; it writes results into its returned output vector, or
// returns an error to fail the whole Call.
type Callable func(inputs []value.Value) ([]value.Value, error)

type binding struct {
	inputShape []value.BuiltinType
	callable   Callable
}

// Registry maps NodeId -> (argument shape vector, callable).
type Registry struct {
	mu       sync.RWMutex
	bindings map[ua.NodeID]binding
}

// NewRegistry returns an empty method registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[ua.NodeID]binding)}
}

// Register binds a callable to a method NodeId with its declared input
// argument shape.
func (r *Registry) Register(id ua.NodeID, inputShape []value.BuiltinType, fn Callable) error {
	if fn == nil {
		return uaerrors.New(uaerrors.BadArgumentsMissing, "nil callable")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[id] = binding{inputShape: inputShape, callable: fn}
	return nil
}

// Unregister removes a binding, e.g. when its node is deleted.
func (r *Registry) Unregister(id ua.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bindings, id)
}

// Bound reports whether id has a registered callable: a Method node is
// reachable only if at least one bound callable is registered for its
// NodeId.
func (r *Registry) Bound(id ua.NodeID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bindings[id]
	return ok
}

// Invoke validates inputs against the declared shape - argument count and
// widening compatibility - then calls the bound callable. A mismatch
// yields BadInvalidArgument carrying the index of the first offending
// argument in its message.
func (r *Registry) Invoke(id ua.NodeID, inputs []value.Value) ([]value.Value, error) {
	r.mu.RLock()
	b, ok := r.bindings[id]
	r.mu.RUnlock()
	if !ok {
		return nil, uaerrors.Newf(uaerrors.BadNodeIdUnknown, "no callable bound for %s", id)
	}
	if len(inputs) != len(b.inputShape) {
		return nil, uaerrors.Newf(uaerrors.BadInvalidArgument, "expected %d arguments, got %d", len(b.inputShape), len(inputs))
	}
	widened := make([]value.Value, len(inputs))
	for i, in := range inputs {
		w, err := in.Widen(b.inputShape[i])
		if err != nil {
			return nil, uaerrors.Newf(uaerrors.BadInvalidArgument, "argument %d: %v", i, err)
		}
		widened[i] = w
	}
	return b.callable(widened)
}
