package servertransport

import (
	"time"

	"github.com/awcullen/opcua/server"
	"github.com/awcullen/opcua/ua"

	"github.com/edgeiiot/opcua-runtime/internal/addrspace"
	internalua "github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/value"
)

// registerAddressSpace walks every namespace above the standard namespace
// 0 (which the server already provides on its own) and registers each
// Object and Variable node with the framework's namespace manager, so a
// real client's Browse and Read requests see the nodes this runtime built
// instead of an empty server.
//
// Registration is restricted to the NodeId and built-in-type shapes this
// server library is confirmed, from every other call site of it in this
// codebase's history, to construct: string-identifier NodeIds and
// Double/Int32/String variable types. Anything outside that — numeric,
// GUID or opaque identifiers, Method/ObjectType/other node classes, other
// built-in types — is skipped and counted rather than guessed at, since
// guessing at a constructor this library has never been seen to expose
// would produce a server that cannot start instead of one with a smaller
// address space.
func (t *Transport) registerAddressSpace(store *addrspace.Store) (registered, skipped int) {
	nm := t.srv.NamespaceManager()
	t.variableNodes = make(map[string]*server.VariableNode)

	for _, ns := range store.Snapshot() {
		if ns.Index == 0 {
			continue
		}
		for _, n := range ns.Nodes {
			node, ok := t.buildNode(store, n)
			if !ok {
				skipped++
				continue
			}
			nm.AddNode(node)
			registered++
			if variable, ok := node.(*server.VariableNode); ok {
				t.variableNodes[n.ID.String()] = variable
			}
		}
	}
	return registered, skipped
}

func (t *Transport) buildNode(store *addrspace.Store, n addrspace.NodeView) (any, bool) {
	id, ok := toAwcullenStringNodeID(n.ID)
	if !ok {
		return nil, false
	}
	browseName := ua.QualifiedName{NamespaceIndex: n.BrowseName.NamespaceIndex, Name: n.BrowseName.Name}
	displayName := ua.LocalizedText{Text: n.DisplayName.Text, Locale: n.DisplayName.Locale}
	refs := t.buildReferences(store, n.ID)

	switch n.Class {
	case addrspace.ClassObject:
		return server.NewObjectNode(t.srv, id, browseName, displayName, displayName, nil, refs, 0), true
	case addrspace.ClassVariable:
		dataType, ok := awcullenDataType(n.DataType)
		if !ok {
			return nil, false
		}
		native, ok := toNativeScalar(n.Current)
		if !ok {
			return nil, false
		}
		now := time.Now()
		initial := ua.NewDataValue(native, 0, now, 0, now, 0)
		var accessLevel byte
		if n.AccessLevel&addrspace.AccessRead != 0 {
			accessLevel |= ua.AccessLevelsCurrentRead
		}
		variable := server.NewVariableNode(t.srv, id, browseName, displayName, displayName, nil, refs,
			initial, dataType, ua.ValueRankScalar, nil, accessLevel, n.MinSamplingMillis, false, nil)
		return variable, true
	default:
		return nil, false
	}
}

func (t *Transport) buildReferences(store *addrspace.Store, id internalua.NodeID) []ua.Reference {
	forward, err := store.ForwardReferences(id)
	if err != nil {
		return nil
	}
	var out []ua.Reference
	for _, ref := range forward {
		refType, ok := awcullenReferenceType(ref.ReferenceType)
		if !ok {
			continue
		}
		target, ok := toAwcullenStringNodeID(ref.Target)
		if !ok {
			continue
		}
		out = append(out, ua.Reference{
			ReferenceTypeID: refType,
			IsInverse:       !ref.IsForward,
			TargetID:        ua.ExpandedNodeID{NodeID: target},
		})
	}
	return out
}

func toAwcullenStringNodeID(id internalua.NodeID) (ua.NodeIDString, bool) {
	if id.Type() != internalua.IdentifierString {
		return ua.NodeIDString{}, false
	}
	return ua.NodeIDString{NamespaceIndex: id.Namespace, ID: id.StringID()}, true
}

func awcullenReferenceType(id internalua.NodeID) (ua.NodeID, bool) {
	switch id {
	case addrspace.ReferenceOrganizes:
		return ua.ReferenceTypeIDOrganizes, true
	case addrspace.ReferenceHasComponent:
		return ua.ReferenceTypeIDHasComponent, true
	default:
		return nil, false
	}
}

func awcullenDataType(t value.BuiltinType) (ua.NodeID, bool) {
	switch t {
	case value.TypeDouble:
		return ua.DataTypeIDDouble, true
	case value.TypeInt32:
		return ua.DataTypeIDInt32, true
	case value.TypeString:
		return ua.DataTypeIDString, true
	default:
		return nil, false
	}
}

func toNativeScalar(v value.Value) (any, bool) {
	if v.IsArray() {
		return nil, false
	}
	switch v.Type() {
	case value.TypeDouble:
		d, err := v.AsDouble()
		return d, err == nil
	case value.TypeInt32:
		i, err := v.AsInt32()
		return i, err == nil
	case value.TypeString:
		s, err := v.AsString()
		return s, err == nil
	default:
		return nil, false
	}
}

// SyncValues re-pushes the current store value of every registered
// Variable node into the server library via SetValue. The framework has
// no confirmed inbound write/call hook to route back into the
// dispatcher (see package doc), so this one-directional push on a timer
// is how store state reaches real clients: the same model the
// application already uses elsewhere (push outward, never intercept
// inbound).
func (t *Transport) SyncValues(store *addrspace.Store) {
	if t.variableNodes == nil {
		return
	}
	now := time.Now()
	for _, ns := range store.Snapshot() {
		if ns.Index == 0 {
			continue
		}
		for _, n := range ns.Nodes {
			variable, ok := t.variableNodes[n.ID.String()]
			if !ok {
				continue
			}
			native, ok := toNativeScalar(n.Current)
			if !ok {
				continue
			}
			variable.SetValue(ua.NewDataValue(native, 0, now, 0, now, 0))
		}
	}
}
