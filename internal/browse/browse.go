// Package browse implements the cycle-safe multi-root browse engine:
// iterative traversal with server-imposed batching and continuation
// points. The work queue uses gammazero/deque the same way the
// subscription store's notification queues do.
package browse

import (
	"sync"

	"github.com/gammazero/deque"
	"github.com/google/uuid"

	"github.com/edgeiiot/opcua-runtime/internal/addrspace"
	"github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
)

// Direction constrains which references a browse root follows.
type Direction uint8

const (
	DirectionForward Direction = iota
	DirectionInverse
	DirectionBoth
)

// maxContinuationPointLength rejects implausible continuation points.
const maxContinuationPointLength = 1024

// RootDescriptor is one browse root.
type RootDescriptor struct {
	NodeID               ua.NodeID
	Direction            Direction
	ReferenceTypeFilter  ua.NodeID // null = any reference type
	IncludeSubtypes      bool
	NodeClassMask        uint32 // bit per addrspace.NodeClass, 0 = all classes
	MaxReferencesPerNode int
}

// Item is a work-queue entry: one node to browse, carrying the path of
// browse names from the root used for cycle detection.
type Item struct {
	NodeID ua.NodeID
	Path   []string // browse names, root-to-here
	Root   RootDescriptor
}

// Result is one surviving reference handed to the application callback.
type Result struct {
	Source     ua.NodeID
	Reference  addrspace.Reference
	Path       []string
	ValueAlias string
}

// Page is one batch of browse results together with a continuation point
// for resuming the remaining work. ContinuationPoint is empty once the
// traversal is exhausted.
type Page struct {
	Results           []Result
	ContinuationPoint []byte
}

// Capabilities are the server-advertised limits that bound the browse
// batch size.
type Capabilities struct {
	MaxBrowseContinuationPoints int
	MaxNodesPerBrowse           int
}

func (c Capabilities) batchSize() int {
	if c.MaxBrowseContinuationPoints <= 0 {
		return c.MaxNodesPerBrowse
	}
	if c.MaxNodesPerBrowse <= 0 {
		return c.MaxBrowseContinuationPoints
	}
	if c.MaxBrowseContinuationPoints < c.MaxNodesPerBrowse {
		return c.MaxBrowseContinuationPoints
	}
	return c.MaxNodesPerBrowse
}

// Engine runs browse traversals directly against a node store. It models
// the server-side case, where Browse/BrowseNext are local
// calls rather than round-trips; the client-side session package drives
// the same algorithm across a transport instead.
//
// A single call to Browse or BrowseNext processes at most one batch of the
// work queue; if work remains afterward, the engine holds it under a
// freshly minted continuation point until a matching BrowseNext call
// claims it or it is dropped for capacity.
type Engine struct {
	store *addrspace.Store
	caps  Capabilities

	mu            sync.Mutex
	continuations map[string]*deque.Deque[Item]
}

// NewEngine returns a browse engine bounded by the given server
// capabilities.
func NewEngine(store *addrspace.Store, caps Capabilities) *Engine {
	return &Engine{store: store, caps: caps, continuations: make(map[string]*deque.Deque[Item])}
}

// ErrorCallback receives invalid references without aborting the batch.
type ErrorCallback func(source ua.NodeID, ref addrspace.Reference, reason error)

// Browse seeds the work queue from the given roots and processes one
// batch. Invalid references are reported through onError but do not abort
// the batch.
func (e *Engine) Browse(roots []RootDescriptor, onError ErrorCallback) (Page, error) {
	work := &deque.Deque[Item]{}
	for _, root := range roots {
		view, err := e.store.Lookup(root.NodeID)
		if err != nil {
			return Page{}, err
		}
		work.PushBack(Item{NodeID: root.NodeID, Path: []string{view.BrowseName.Name}, Root: root})
	}
	return e.browseBatch(work, onError)
}

// BrowseNext resumes the work queue held under cp and processes the next
// batch. An unknown or already-claimed continuation point fails with
// BadContinuationPointInvalid.
func (e *Engine) BrowseNext(cp []byte, onError ErrorCallback) (Page, error) {
	if err := ValidateContinuationPoint(cp); err != nil {
		return Page{}, err
	}
	if len(cp) == 0 {
		return Page{}, nil
	}
	e.mu.Lock()
	work, ok := e.continuations[string(cp)]
	if ok {
		delete(e.continuations, string(cp))
	}
	e.mu.Unlock()
	if !ok {
		return Page{}, uaerrors.New(uaerrors.BadContinuationPointInvalid, "unknown or expired continuation point")
	}
	return e.browseBatch(work, onError)
}

func (e *Engine) browseBatch(work *deque.Deque[Item], onError ErrorCallback) (Page, error) {
	batchSize := e.caps.batchSize()
	if batchSize <= 0 {
		batchSize = 1
	}

	batch := make([]Item, 0, batchSize)
	for work.Len() > 0 && len(batch) < batchSize {
		batch = append(batch, work.PopFront())
	}

	var results []Result
	for _, item := range batch {
		refs, err := e.referencesFor(item)
		if err != nil {
			if onError != nil {
				onError(item.NodeID, addrspace.Reference{}, err)
			}
			continue
		}
		for _, ref := range refs {
			target := ref.Target
			targetView, err := e.store.Lookup(target)
			if err != nil {
				if onError != nil {
					onError(item.NodeID, ref, err)
				}
				continue
			}
			if !validReference(item.Root, ref, targetView) {
				if onError != nil {
					onError(item.NodeID, ref, uaerrors.New(uaerrors.BadInvalidArgument, "reference fails validation"))
				}
				continue
			}
			if cycles(item.Path, targetView.BrowseName.Name) {
				continue
			}

			path := append(append([]string{}, item.Path...), targetView.BrowseName.Name)
			results = append(results, Result{
				Source:     item.NodeID,
				Reference:  ref,
				Path:       path,
				ValueAlias: synthesizeAlias(targetView),
			})

			if targetView.Class != addrspace.ClassVariable {
				work.PushBack(Item{NodeID: target, Path: path, Root: item.Root})
			}
		}
	}

	if work.Len() == 0 {
		return Page{Results: results}, nil
	}
	cp, err := e.storeContinuation(work)
	if err != nil {
		return Page{Results: results}, err
	}
	return Page{Results: results, ContinuationPoint: cp}, nil
}

func (e *Engine) storeContinuation(work *deque.Deque[Item]) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	limit := e.caps.MaxBrowseContinuationPoints
	if limit > 0 && len(e.continuations) >= limit {
		return nil, uaerrors.New(uaerrors.BadNoContinuationPoints, "too many open continuation points")
	}
	id := uuid.New()
	cp := append([]byte{}, id[:]...)
	e.continuations[string(cp)] = work
	return cp, nil
}

func (e *Engine) referencesFor(item Item) ([]addrspace.Reference, error) {
	switch item.Root.Direction {
	case DirectionInverse:
		return e.store.InverseReferences(item.NodeID)
	case DirectionBoth:
		fwd, err := e.store.ForwardReferences(item.NodeID)
		if err != nil {
			return nil, err
		}
		inv, err := e.store.InverseReferences(item.NodeID)
		if err != nil {
			return nil, err
		}
		return append(fwd, inv...), nil
	default:
		return e.store.ForwardReferences(item.NodeID)
	}
}

func validReference(root RootDescriptor, ref addrspace.Reference, target addrspace.NodeView) bool {
	if target.ID.IsNull() {
		return false
	}
	if target.BrowseName.Name == "" || target.DisplayName.Text == "" {
		return false
	}
	if ref.ReferenceType.IsNull() {
		return false
	}
	if !root.ReferenceTypeFilter.IsNull() && !root.IncludeSubtypes && ref.ReferenceType != root.ReferenceTypeFilter {
		return false
	}
	if root.NodeClassMask != 0 && root.NodeClassMask&(1<<target.Class) == 0 {
		return false
	}
	switch root.Direction {
	case DirectionForward:
		return ref.IsForward
	case DirectionInverse:
		return !ref.IsForward
	default:
		return true
	}
}

func cycles(path []string, name string) bool {
	for _, token := range path {
		if token == name {
			return true
		}
	}
	return false
}

func synthesizeAlias(view addrspace.NodeView) string {
	np := ua.NodePath{
		Namespace:  view.ID.Namespace,
		IdentType:  view.ID.Type(),
		BrowseName: view.BrowseName.Name,
	}
	if view.Class == addrspace.ClassVariable {
		np.ValueType = view.DataType.String()
	}
	return ua.FormatNodePath(np)
}
