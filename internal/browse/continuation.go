package browse

import (
	"github.com/edgeiiot/opcua-runtime/internal/addrspace"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
)

// ValidateContinuationPoint rejects a continuation point longer than 1 KiB
// as implausible. A zero-length continuation point means "no more" and is
// always valid.
func ValidateContinuationPoint(cp []byte) error {
	if len(cp) == 0 {
		return nil
	}
	if len(cp) > maxContinuationPointLength {
		return uaerrors.New(uaerrors.BadInternalError, "continuation point exceeds plausible length")
	}
	return nil
}

// BrowseView seeds the work queue with all children of the ViewsFolder
// (namespace 0), restricting the node class mask to Object/View for the
// resulting traversal.
func (e *Engine) BrowseView(maxReferencesPerNode int) (Page, error) {
	const (
		classObjectBit = 1 << 2 // addrspace.ClassObject
		classViewBit   = 1 << 6 // addrspace.ClassView
	)
	root := RootDescriptor{
		NodeID:               addrspace.ViewsFolder,
		Direction:            DirectionForward,
		NodeClassMask:        classObjectBit | classViewBit,
		MaxReferencesPerNode: maxReferencesPerNode,
	}
	return e.Browse([]RootDescriptor{root}, nil)
}

// DrainAll repeatedly calls BrowseNext against page's continuation point
// until the traversal is exhausted, returning the full accumulated result
// set. It exists for callers (tests, local diagnostics) that want the old
// single-shot behavior; real service handlers should surface each Page's
// continuation point to the caller instead of draining it server-side.
func (e *Engine) DrainAll(page Page, onError ErrorCallback) ([]Result, error) {
	results := append([]Result{}, page.Results...)
	cp := page.ContinuationPoint
	for len(cp) > 0 {
		next, err := e.BrowseNext(cp, onError)
		if err != nil {
			return results, err
		}
		results = append(results, next.Results...)
		cp = next.ContinuationPoint
	}
	return results, nil
}
