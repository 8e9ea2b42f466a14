package dispatch

import (
	"github.com/edgeiiot/opcua-runtime/internal/addrspace"
	"github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
	"github.com/edgeiiot/opcua-runtime/internal/value"
)

// CallRequest is one method invocation of a Call service batch.
type CallRequest struct {
	ObjectID ua.NodeID
	MethodID ua.NodeID
	Inputs   []value.Value
}

// CallResult is the corresponding per-item result.
type CallResult struct {
	Outputs []value.Value
	Status  uaerrors.StatusCode
}

// Call resolves object and method, confirms the method is a component of
// the object, validates inputs, invokes, and packs outputs.
func (d *Dispatcher) Call(reqs []CallRequest) []CallResult {
	out := make([]CallResult, len(reqs))
	for i, r := range reqs {
		out[i] = d.callOne(r)
	}
	return out
}

func (d *Dispatcher) callOne(r CallRequest) CallResult {
	if _, err := d.store.Lookup(r.ObjectID); err != nil {
		return CallResult{Status: uaerrors.CodeOf(err)}
	}
	methodView, err := d.store.Lookup(r.MethodID)
	if err != nil {
		return CallResult{Status: uaerrors.CodeOf(err)}
	}
	if methodView.Class != addrspace.ClassMethod {
		return CallResult{Status: uaerrors.BadInvalidArgument}
	}
	if !d.isComponentOf(r.ObjectID, r.MethodID) {
		return CallResult{Status: uaerrors.BadInvalidArgument}
	}
	if !d.methods.Bound(r.MethodID) {
		return CallResult{Status: uaerrors.BadNodeIdUnknown}
	}

	outputs, err := d.methods.Invoke(r.MethodID, r.Inputs)
	if err != nil {
		return CallResult{Status: uaerrors.CodeOf(err)}
	}
	return CallResult{Outputs: outputs, Status: uaerrors.Good}
}

// isComponentOf reports whether method is a HasComponent target of object
// itself, or of the object's type definition, or of any of that type's
// supertypes reached by walking HasSubtype upward.
func (d *Dispatcher) isComponentOf(object, methodID ua.NodeID) bool {
	if d.hasComponent(object, methodID) {
		return true
	}
	typeDef, ok := d.typeDefinitionOf(object)
	if !ok {
		return false
	}
	visited := map[ua.NodeID]bool{}
	for current := typeDef; !current.IsNull() && !visited[current]; current = d.supertypeOf(current) {
		visited[current] = true
		if d.hasComponent(current, methodID) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) hasComponent(source, methodID ua.NodeID) bool {
	refs, err := d.store.ForwardReferences(source)
	if err != nil {
		return false
	}
	for _, ref := range refs {
		if ref.ReferenceType == addrspace.ReferenceHasComponent && ref.Target == methodID {
			return true
		}
	}
	return false
}

func (d *Dispatcher) typeDefinitionOf(object ua.NodeID) (ua.NodeID, bool) {
	refs, err := d.store.ForwardReferences(object)
	if err != nil {
		return ua.NodeID{}, false
	}
	for _, ref := range refs {
		if ref.ReferenceType == addrspace.ReferenceHasTypeDefinition {
			return ref.Target, true
		}
	}
	return ua.NodeID{}, false
}

// supertypeOf returns the type a HasSubtype edge points at this type from,
// or the null NodeId if typeID has no recorded supertype.
func (d *Dispatcher) supertypeOf(typeID ua.NodeID) ua.NodeID {
	refs, err := d.store.InverseReferences(typeID)
	if err != nil {
		return ua.NodeID{}
	}
	for _, ref := range refs {
		if ref.ReferenceType == addrspace.ReferenceHasSubtype {
			return ref.Target
		}
	}
	return ua.NodeID{}
}
