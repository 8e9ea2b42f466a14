package addrspace

import (
	"sort"
	"sync"

	"github.com/edgeiiot/opcua-runtime/internal/method"
	"github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
	"github.com/edgeiiot/opcua-runtime/internal/value"
)

// Store is the address-space-wide node store: an indexed set
// of namespaces, each an indexed set of nodes, under a single-writer/
// many-reader discipline per namespace, so that writes to one namespace
// never block reads of another.
type Store struct {
	mu         sync.RWMutex // guards namespaces/uriToIndex membership only
	namespaces map[uint16]*namespace
	uriToIndex map[string]uint16
	nextIndex  uint16
}

// NewStore returns a Store pre-populated with the read-only standard
// namespace 0, containing only the well-known folder nodes the browse
// engine seeds from.
func NewStore() *Store {
	s := &Store{
		namespaces: make(map[uint16]*namespace),
		uriToIndex: make(map[string]uint16),
		nextIndex:  1,
	}
	ns0 := newNamespace(0, "http://opcfoundation.org/UA/")
	s.namespaces[0] = ns0
	s.uriToIndex[ns0.uri] = 0
	seedStandardNamespace(ns0)
	return s
}

func seedStandardNamespace(ns0 *namespace) {
	root := newNode(NodeItem{
		ID:          RootFolder,
		Class:       ClassObject,
		BrowseName:  ua.QualifiedName{NamespaceIndex: 0, Name: "Root"},
		DisplayName: ua.LocalizedText{Locale: "en", Text: "Root"},
	})
	objects := newNode(NodeItem{
		ID:          ObjectsFolder,
		Class:       ClassObject,
		BrowseName:  ua.QualifiedName{NamespaceIndex: 0, Name: "Objects"},
		DisplayName: ua.LocalizedText{Locale: "en", Text: "Objects"},
	})
	types := newNode(NodeItem{
		ID:          TypesFolder,
		Class:       ClassObject,
		BrowseName:  ua.QualifiedName{NamespaceIndex: 0, Name: "Types"},
		DisplayName: ua.LocalizedText{Locale: "en", Text: "Types"},
	})
	views := newNode(NodeItem{
		ID:          ViewsFolder,
		Class:       ClassObject,
		BrowseName:  ua.QualifiedName{NamespaceIndex: 0, Name: "Views"},
		DisplayName: ua.LocalizedText{Locale: "en", Text: "Views"},
	})
	ns0.nodes[root.id] = root
	ns0.nodes[objects.id] = objects
	ns0.nodes[types.id] = types
	ns0.nodes[views.id] = views
	linkOrganizes(root, objects)
	linkOrganizes(root, types)
	linkOrganizes(root, views)
}

func linkOrganizes(parent, child *node) {
	ref := Reference{Source: parent.id, ReferenceType: ReferenceOrganizes, Target: child.id, IsForward: true}
	parent.forward[ReferenceOrganizes] = append(parent.forward[ReferenceOrganizes], ref)
	inv := Reference{Source: child.id, ReferenceType: ReferenceOrganizes, Target: parent.id, IsForward: false}
	child.inverse[ReferenceOrganizes] = append(child.inverse[ReferenceOrganizes], inv)
}

// CreateNamespace implements createNamespace: returns a new
// index >= 1 and seeds the namespace with a single root Object node linked
// from namespace 0's Objects folder, so the address space stays one
// connected graph.
func (s *Store) CreateNamespace(uri string, rootID ua.NodeID, rootBrowse ua.QualifiedName, rootDisplay ua.LocalizedText) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.uriToIndex[uri]; exists {
		return 0, uaerrors.Newf(uaerrors.BadAlreadyExists, "namespace uri %q already registered", uri)
	}
	idx := s.nextIndex
	s.nextIndex++

	ns := newNamespace(idx, uri)
	root := newNode(NodeItem{ID: rootID, Class: ClassObject, BrowseName: rootBrowse, DisplayName: rootDisplay})
	ns.nodes[root.id] = root
	s.namespaces[idx] = ns
	s.uriToIndex[uri] = idx

	if ns0 := s.namespaces[0]; ns0 != nil {
		if objects, ok := ns0.nodes[ObjectsFolder]; ok {
			ns0.mu.Lock()
			linkOrganizes(objects, root)
			ns0.mu.Unlock()
		}
	}
	return idx, nil
}

func (s *Store) namespaceByURI(uri string) (*namespace, error) {
	s.mu.RLock()
	idx, ok := s.uriToIndex[uri]
	s.mu.RUnlock()
	if !ok {
		return nil, uaerrors.Newf(uaerrors.BadInvalidArgument, "unknown namespace uri %q", uri)
	}
	return s.namespaceByIndex(idx)
}

func (s *Store) namespaceByIndex(idx uint16) (*namespace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ns, ok := s.namespaces[idx]
	if !ok {
		return nil, uaerrors.Newf(uaerrors.BadInvalidArgument, "unknown namespace index %d", idx)
	}
	return ns, nil
}

// CreateNode implements createNode.
func (s *Store) CreateNode(namespaceURI string, item NodeItem) error {
	ns, err := s.namespaceByURI(namespaceURI)
	if err != nil {
		return err
	}
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if _, exists := ns.nodes[item.ID]; exists {
		return uaerrors.Newf(uaerrors.BadNodeIdExists, "node %s already exists", item.ID)
	}
	n := newNode(item)
	if !item.Source.IsNull() {
		parent, ok := ns.nodes[item.Source]
		if !ok {
			return uaerrors.Newf(uaerrors.BadParentNodeIdInvalid, "parent node %s not found", item.Source)
		}
		linkOrganizes(parent, n)
	}
	ns.nodes[item.ID] = n
	return nil
}

// CreateMethodNode implements createMethodNode: the node is
// created and registered with the method registry in one step.
func (s *Store) CreateMethodNode(namespaceURI string, item NodeItem, registry *method.Registry, callable method.Callable) error {
	item.Class = ClassMethod
	if item.Method == nil {
		return uaerrors.New(uaerrors.BadArgumentsMissing, "method node requires a descriptor")
	}
	if callable == nil {
		return uaerrors.New(uaerrors.BadArgumentsMissing, "method node requires a callable")
	}

	shape := make([]value.BuiltinType, len(item.Method.InputArguments))
	for i, a := range item.Method.InputArguments {
		shape[i] = a.DataType
	}

	if err := s.CreateNode(namespaceURI, item); err != nil {
		return err
	}
	if err := registry.Register(item.ID, shape, callable); err != nil {
		return err
	}
	return nil
}

// AddReference resolves both endpoints to NodeIds (by browse name lookup
// within their namespace) before insertion; calling it twice with
// identical arguments is a no-op.
func (s *Store) AddReference(sourceNS uint16, sourcePath string, targetNS uint16, targetPath string, refType ua.NodeID, forward bool) error {
	srcNs, err := s.namespaceByIndex(sourceNS)
	if err != nil {
		return uaerrors.New(uaerrors.BadSourceNodeIdInvalid, "unknown source namespace")
	}
	tgtNs, err := s.namespaceByIndex(targetNS)
	if err != nil {
		return uaerrors.New(uaerrors.BadTargetNodeIdInvalid, "unknown target namespace")
	}

	srcID, err := resolveBrowseName(srcNs, sourcePath)
	if err != nil {
		return uaerrors.New(uaerrors.BadSourceNodeIdInvalid, "source path not found")
	}
	tgtID, err := resolveBrowseName(tgtNs, targetPath)
	if err != nil {
		return uaerrors.New(uaerrors.BadTargetNodeIdInvalid, "target path not found")
	}

	// lock ordering: lower namespace index first, to avoid deadlock when
	// source and target live in different namespaces.
	first, second := srcNs, tgtNs
	if second.index < first.index {
		first, second = second, first
	}
	first.mu.Lock()
	if second != first {
		second.mu.Lock()
	}
	defer func() {
		if second != first {
			second.mu.Unlock()
		}
		first.mu.Unlock()
	}()

	src := srcNs.nodes[srcID]
	ref := Reference{Source: srcID, ReferenceType: refType, Target: tgtID, IsForward: forward}
	for _, existing := range src.forward[refType] {
		if existing == ref {
			return nil
		}
	}
	src.forward[refType] = append(src.forward[refType], ref)

	tgt := tgtNs.nodes[tgtID]
	inv := Reference{Source: tgtID, ReferenceType: refType, Target: srcID, IsForward: !forward}
	tgt.inverse[refType] = append(tgt.inverse[refType], inv)
	return nil
}

func resolveBrowseName(ns *namespace, name string) (ua.NodeID, error) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	for id, n := range ns.nodes {
		if n.browseName.Name == name {
			return id, nil
		}
	}
	return ua.NodeID{}, uaerrors.New(uaerrors.BadInvalidArgument, "browse name not found")
}

// ModifyVariableNode implements modifyVariableNode.
func (s *Store) ModifyVariableNode(namespaceURI, browseName string, v value.Value) error {
	ns, err := s.namespaceByURI(namespaceURI)
	if err != nil {
		return err
	}
	ns.mu.RLock()
	id, err := resolveBrowseNameLocked(ns, browseName)
	var n *node
	if err == nil {
		n = ns.nodes[id]
	}
	ns.mu.RUnlock()
	if err != nil {
		return uaerrors.New(uaerrors.BadNodeIdUnknown, "browse name not found")
	}
	return commitVariableWrite(n, v)
}

// WriteValue is the NodeId-addressed counterpart of ModifyVariableNode,
// used by the service dispatcher's Write, which receives
// NodeIds rather than browse-name paths.
func (s *Store) WriteValue(id ua.NodeID, v value.Value) error {
	s.mu.RLock()
	ns, ok := s.namespaces[id.Namespace]
	s.mu.RUnlock()
	if !ok {
		return uaerrors.Newf(uaerrors.BadNodeIdUnknown, "node %s unknown", id)
	}
	ns.mu.RLock()
	n, ok := ns.nodes[id]
	ns.mu.RUnlock()
	if !ok {
		return uaerrors.Newf(uaerrors.BadNodeIdUnknown, "node %s unknown", id)
	}
	return commitVariableWrite(n, v)
}

// WriteValueRange commits a numeric-range write: the node's current array
// value has elements [lo:hi) replaced by v, atomically with respect to
// concurrent whole-value reads and writes of the same node.
func (s *Store) WriteValueRange(id ua.NodeID, v value.Value, lo, hi int) error {
	s.mu.RLock()
	ns, ok := s.namespaces[id.Namespace]
	s.mu.RUnlock()
	if !ok {
		return uaerrors.Newf(uaerrors.BadNodeIdUnknown, "node %s unknown", id)
	}
	ns.mu.RLock()
	n, ok := ns.nodes[id]
	ns.mu.RUnlock()
	if !ok {
		return uaerrors.Newf(uaerrors.BadNodeIdUnknown, "node %s unknown", id)
	}
	return commitVariableRangeWrite(n, v, lo, hi)
}

func commitVariableRangeWrite(n *node, v value.Value, lo, hi int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.class != ClassVariable && n.class != ClassVariableType {
		return uaerrors.New(uaerrors.BadNotWritable, "node is not a Variable")
	}
	if n.accessLevel&AccessWrite == 0 {
		return uaerrors.New(uaerrors.BadNotWritable, "node does not permit writes")
	}
	if v.Type() != n.dataType {
		return uaerrors.Newf(uaerrors.BadTypeMismatch, "value type %s does not match declared type %s", v.Type(), n.dataType)
	}
	merged, err := n.current.ReplaceSlice(v, lo, hi)
	if err != nil {
		return err
	}
	n.current = merged
	return nil
}

func commitVariableWrite(n *node, v value.Value) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.class != ClassVariable && n.class != ClassVariableType {
		return uaerrors.New(uaerrors.BadNotWritable, "node is not a Variable")
	}
	if n.accessLevel&AccessWrite == 0 {
		return uaerrors.New(uaerrors.BadNotWritable, "node does not permit writes")
	}
	if v.Type() != n.dataType {
		return uaerrors.Newf(uaerrors.BadTypeMismatch, "value type %s does not match declared type %s", v.Type(), n.dataType)
	}
	if n.valueRank >= 1 && !v.IsArray() {
		return uaerrors.New(uaerrors.BadTypeMismatch, "value rank requires an array value")
	}
	if n.valueRank == -1 && v.IsArray() {
		return uaerrors.New(uaerrors.BadTypeMismatch, "scalar node cannot accept an array value")
	}
	n.current = v
	return nil
}

func resolveBrowseNameLocked(ns *namespace, name string) (ua.NodeID, error) {
	for id, n := range ns.nodes {
		if n.browseName.Name == name {
			return id, nil
		}
	}
	return ua.NodeID{}, uaerrors.New(uaerrors.BadNodeIdUnknown, "browse name not found")
}

// Lookup implements lookup: returns a borrowed, read-only view.
func (s *Store) Lookup(id ua.NodeID) (NodeView, error) {
	s.mu.RLock()
	ns, ok := s.namespaces[id.Namespace]
	s.mu.RUnlock()
	if !ok {
		return NodeView{}, uaerrors.Newf(uaerrors.BadNodeIdUnknown, "node %s unknown", id)
	}
	ns.mu.RLock()
	n, ok := ns.nodes[id]
	ns.mu.RUnlock()
	if !ok {
		return NodeView{}, uaerrors.Newf(uaerrors.BadNodeIdUnknown, "node %s unknown", id)
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.view(), nil
}

// DeleteNode removes a node and marks it gone for reference purposes;
// when a referenced node is deleted, its monitored items must become
// permanently marked BadNodeIdUnknown, but the subscription store, not
// this package, is responsible for acting on that.
func (s *Store) DeleteNode(id ua.NodeID) error {
	s.mu.RLock()
	ns, ok := s.namespaces[id.Namespace]
	s.mu.RUnlock()
	if !ok {
		return uaerrors.Newf(uaerrors.BadNodeIdUnknown, "node %s unknown", id)
	}
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if _, ok := ns.nodes[id]; !ok {
		return uaerrors.Newf(uaerrors.BadNodeIdUnknown, "node %s unknown", id)
	}
	delete(ns.nodes, id)
	return nil
}

// NamespaceSnapshot is a read-only copy of one namespace's nodes, used by
// the server transport to register the address space with the underlying
// framework's node manager at startup.
type NamespaceSnapshot struct {
	Index uint16
	URI   string
	Nodes []NodeView
}

// Snapshot returns a read-only copy of every namespace and its nodes, in
// ascending index order, including the standard namespace 0. Callers
// registering the application's own nodes with an external node manager
// typically skip index 0, which that manager already provides natively.
func (s *Store) Snapshot() []NamespaceSnapshot {
	s.mu.RLock()
	indices := make([]uint16, 0, len(s.namespaces))
	for idx := range s.namespaces {
		indices = append(indices, idx)
	}
	s.mu.RUnlock()
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	out := make([]NamespaceSnapshot, 0, len(indices))
	for _, idx := range indices {
		s.mu.RLock()
		ns := s.namespaces[idx]
		s.mu.RUnlock()

		ns.mu.RLock()
		nodes := make([]NodeView, 0, len(ns.nodes))
		for _, n := range ns.nodes {
			n.mu.RLock()
			nodes = append(nodes, n.view())
			n.mu.RUnlock()
		}
		uri := ns.uri
		ns.mu.RUnlock()

		out = append(out, NamespaceSnapshot{Index: idx, URI: uri, Nodes: nodes})
	}
	return out
}

// NamespaceCount reports how many namespaces are registered, including the
// standard namespace 0.
func (s *Store) NamespaceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.namespaces)
}

// ForwardReferences returns a copy of the forward reference list for id,
// across all reference types, for the browse engine to filter. Order is
// the insertion order within each reference-type bucket.
func (s *Store) ForwardReferences(id ua.NodeID) ([]Reference, error) {
	return s.references(id, true)
}

// InverseReferences mirrors ForwardReferences for reverse browse.
func (s *Store) InverseReferences(id ua.NodeID) ([]Reference, error) {
	return s.references(id, false)
}

func (s *Store) references(id ua.NodeID, forward bool) ([]Reference, error) {
	s.mu.RLock()
	ns, ok := s.namespaces[id.Namespace]
	s.mu.RUnlock()
	if !ok {
		return nil, uaerrors.Newf(uaerrors.BadNodeIdUnknown, "node %s unknown", id)
	}
	ns.mu.RLock()
	n, ok := ns.nodes[id]
	ns.mu.RUnlock()
	if !ok {
		return nil, uaerrors.Newf(uaerrors.BadNodeIdUnknown, "node %s unknown", id)
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	bucket := n.forward
	if !forward {
		bucket = n.inverse
	}
	var out []Reference
	for _, refs := range bucket {
		out = append(out, refs...)
	}
	return out, nil
}
