package browse

import (
	"testing"

	"github.com/edgeiiot/opcua-runtime/internal/addrspace"
	"github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*addrspace.Store, string) {
	t.Helper()
	store := addrspace.NewStore()
	uri := "urn:test:browse"
	_, err := store.CreateNamespace(uri, ua.NewNumericNodeID(1, 1),
		ua.QualifiedName{NamespaceIndex: 1, Name: "Root1"}, ua.LocalizedText{Locale: "en", Text: "Root1"})
	require.NoError(t, err)
	return store, uri
}

func TestBrowseCycleSafetySeedScenario(t *testing.T) {
	store, uri := newTestStore(t)
	idA := ua.NewStringNodeID(1, "A")
	idB := ua.NewStringNodeID(1, "B")
	require.NoError(t, store.CreateNode(uri, addrspace.NodeItem{
		ID: idA, Class: addrspace.ClassObject, BrowseName: ua.QualifiedName{NamespaceIndex: 1, Name: "A"},
		DisplayName: ua.LocalizedText{Locale: "en", Text: "A"},
	}))
	require.NoError(t, store.CreateNode(uri, addrspace.NodeItem{
		ID: idB, Class: addrspace.ClassObject, BrowseName: ua.QualifiedName{NamespaceIndex: 1, Name: "B"},
		DisplayName: ua.LocalizedText{Locale: "en", Text: "B"},
	}))
	require.NoError(t, store.AddReference(1, "A", 1, "B", addrspace.ReferenceOrganizes, true))
	require.NoError(t, store.AddReference(1, "B", 1, "A", addrspace.ReferenceOrganizes, true))

	engine := NewEngine(store, Capabilities{MaxBrowseContinuationPoints: 100, MaxNodesPerBrowse: 100})
	page, err := engine.Browse([]RootDescriptor{{NodeID: idA, Direction: DirectionForward}}, nil)
	require.NoError(t, err)
	results, err := engine.DrainAll(page, nil)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, r := range results {
		seen[r.Reference.Target.String()]++
	}
	assert.Equal(t, 1, seen[idB.String()])
	assert.LessOrEqual(t, len(results), 3) // only A->B: B->A returns to a visited node and is dropped
}

func TestValidateContinuationPointRejectsOversized(t *testing.T) {
	require.NoError(t, ValidateContinuationPoint(nil))
	require.NoError(t, ValidateContinuationPoint(make([]byte, 1024)))
	assert.Error(t, ValidateContinuationPoint(make([]byte, 1025)))
}

func TestBrowseOfNodeWithoutReferencesReportsNoErrors(t *testing.T) {
	store, uri := newTestStore(t)
	idA := ua.NewStringNodeID(1, "A")
	require.NoError(t, store.CreateNode(uri, addrspace.NodeItem{
		ID: idA, Class: addrspace.ClassObject, BrowseName: ua.QualifiedName{NamespaceIndex: 1, Name: "A"},
		DisplayName: ua.LocalizedText{Locale: "en", Text: "A"},
	}))
	engine := NewEngine(store, Capabilities{MaxBrowseContinuationPoints: 10, MaxNodesPerBrowse: 10})

	var errCount int
	page, err := engine.Browse([]RootDescriptor{{NodeID: idA, Direction: DirectionForward}}, func(src ua.NodeID, ref addrspace.Reference, reason error) {
		errCount++
	})
	require.NoError(t, err)
	assert.Empty(t, page.Results)
	assert.Empty(t, page.ContinuationPoint)
	assert.Equal(t, 0, errCount) // A has no references at all, not an invalid one
}

func TestBrowseNextResumesAcrossBatches(t *testing.T) {
	store, uri := newTestStore(t)
	var roots []RootDescriptor
	var children []ua.NodeID
	for i := 0; i < 5; i++ {
		containerName := "Container" + string(rune('A'+i))
		childName := "Child" + string(rune('A'+i))
		containerID := ua.NewStringNodeID(1, containerName)
		childID := ua.NewStringNodeID(1, childName)
		children = append(children, childID)

		require.NoError(t, store.CreateNode(uri, addrspace.NodeItem{
			ID: containerID, Class: addrspace.ClassObject,
			BrowseName:  ua.QualifiedName{NamespaceIndex: 1, Name: containerName},
			DisplayName: ua.LocalizedText{Locale: "en", Text: containerName},
		}))
		require.NoError(t, store.CreateNode(uri, addrspace.NodeItem{
			ID: childID, Class: addrspace.ClassVariable,
			BrowseName:  ua.QualifiedName{NamespaceIndex: 1, Name: childName},
			DisplayName: ua.LocalizedText{Locale: "en", Text: childName},
			DataType:    value.TypeInt32, AccessLevel: addrspace.AccessRead, Initial: value.Int32(0),
		}))
		require.NoError(t, store.AddReference(1, containerName, 1, childName, addrspace.ReferenceHasComponent, true))
		roots = append(roots, RootDescriptor{NodeID: containerID, Direction: DirectionForward})
	}

	engine := NewEngine(store, Capabilities{MaxBrowseContinuationPoints: 10, MaxNodesPerBrowse: 2})
	page, err := engine.Browse(roots, nil)
	require.NoError(t, err)
	assert.Len(t, page.Results, 2)
	require.NotEmpty(t, page.ContinuationPoint)

	results, err := engine.DrainAll(page, nil)
	require.NoError(t, err)
	assert.Len(t, results, 5)

	seen := map[string]bool{}
	for _, r := range results {
		seen[r.Reference.Target.String()] = true
	}
	for _, id := range children {
		assert.True(t, seen[id.String()], "missing child %s", id)
	}
}

func TestBrowseNextRejectsUnknownContinuationPoint(t *testing.T) {
	store, _ := newTestStore(t)
	engine := NewEngine(store, Capabilities{MaxBrowseContinuationPoints: 10, MaxNodesPerBrowse: 10})
	_, err := engine.BrowseNext([]byte("not-a-real-token-not-a-real-token"), nil)
	require.Error(t, err)
}
