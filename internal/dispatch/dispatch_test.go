package dispatch

import (
	"math"
	"testing"

	"github.com/edgeiiot/opcua-runtime/internal/addrspace"
	"github.com/edgeiiot/opcua-runtime/internal/method"
	"github.com/edgeiiot/opcua-runtime/internal/subscription"
	"github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
	"github.com/edgeiiot/opcua-runtime/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, string) {
	t.Helper()
	store := addrspace.NewStore()
	uri := "urn:test:line1"
	_, err := store.CreateNamespace(uri, ua.NewNumericNodeID(1, 1000),
		ua.QualifiedName{NamespaceIndex: 1, Name: "Line1"}, ua.LocalizedText{Locale: "en", Text: "Line1"})
	require.NoError(t, err)
	registry := method.NewRegistry()
	subs := subscription.NewStore()
	return New(store, registry, subs), uri
}

func TestReadScalarDoubleSeedScenario(t *testing.T) {
	d, uri := newTestDispatcher(t)
	id := ua.NewStringNodeID(1, "Double")
	require.NoError(t, d.store.CreateNode(uri, addrspace.NodeItem{
		ID:          id,
		Class:       addrspace.ClassVariable,
		BrowseName:  ua.QualifiedName{NamespaceIndex: 1, Name: "Double"},
		AccessLevel: addrspace.AccessRead | addrspace.AccessWrite,
		DataType:    value.TypeDouble,
		ValueRank:   -1,
		Initial:     value.Double(50.4),
	}))

	results := d.Read([]ReadRequest{{NodeID: id, AttributeID: AttributeValue}})
	require.Len(t, results, 1)
	assert.Equal(t, uaerrors.Good, results[0].Status)
	got, err := results[0].Value.AsDouble()
	require.NoError(t, err)
	assert.Equal(t, 50.4, got)
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	d, uri := newTestDispatcher(t)
	id := ua.NewStringNodeID(1, "Counter")
	require.NoError(t, d.store.CreateNode(uri, addrspace.NodeItem{
		ID:          id,
		Class:       addrspace.ClassVariable,
		BrowseName:  ua.QualifiedName{NamespaceIndex: 1, Name: "Counter"},
		AccessLevel: addrspace.AccessRead | addrspace.AccessWrite,
		DataType:    value.TypeInt32,
		ValueRank:   -1,
	}))

	statuses := d.Write([]WriteRequest{{NodeID: id, AttributeID: AttributeValue, Value: value.Int32(7)}})
	require.Equal(t, []uaerrors.StatusCode{uaerrors.Good}, statuses)

	results := d.Read([]ReadRequest{{NodeID: id, AttributeID: AttributeValue}})
	got, err := results[0].Value.AsInt32()
	require.NoError(t, err)
	assert.EqualValues(t, 7, got)
}

func TestIndexRangeReadProjectsSingleElement(t *testing.T) {
	d, uri := newTestDispatcher(t)
	id := ua.NewStringNodeID(1, "Samples")
	require.NoError(t, d.store.CreateNode(uri, addrspace.NodeItem{
		ID:          id,
		Class:       addrspace.ClassVariable,
		BrowseName:  ua.QualifiedName{NamespaceIndex: 1, Name: "Samples"},
		AccessLevel: addrspace.AccessRead | addrspace.AccessWrite,
		DataType:    value.TypeInt32,
		ValueRank:   1,
		Initial:     value.Int32Array([]int32{10, 20, 30, 40}),
	}))

	results := d.Read([]ReadRequest{{NodeID: id, AttributeID: AttributeValue, IndexRange: "2"}})
	require.Len(t, results, 1)
	require.Equal(t, uaerrors.Good, results[0].Status)
	assert.Equal(t, 1, results[0].Value.Len())
	assert.True(t, results[0].Value.Equal(value.Int32Array([]int32{30})))
}

func TestIndexRangeWriteReplacesSubRangeThenReadsBack(t *testing.T) {
	d, uri := newTestDispatcher(t)
	id := ua.NewStringNodeID(1, "Samples")
	require.NoError(t, d.store.CreateNode(uri, addrspace.NodeItem{
		ID:          id,
		Class:       addrspace.ClassVariable,
		BrowseName:  ua.QualifiedName{NamespaceIndex: 1, Name: "Samples"},
		AccessLevel: addrspace.AccessRead | addrspace.AccessWrite,
		DataType:    value.TypeInt32,
		ValueRank:   1,
		Initial:     value.Int32Array([]int32{10, 20, 30, 40}),
	}))

	statuses := d.Write([]WriteRequest{{
		NodeID: id, AttributeID: AttributeValue, IndexRange: "1:2", Value: value.Int32Array([]int32{99, 98}),
	}})
	require.Equal(t, []uaerrors.StatusCode{uaerrors.Good}, statuses)

	results := d.Read([]ReadRequest{{NodeID: id, AttributeID: AttributeValue}})
	require.Len(t, results, 1)
	assert.True(t, results[0].Value.Equal(value.Int32Array([]int32{10, 99, 98, 40})))
}

func TestIndexRangeReadRejectsMalformedRange(t *testing.T) {
	d, uri := newTestDispatcher(t)
	id := ua.NewStringNodeID(1, "Samples")
	require.NoError(t, d.store.CreateNode(uri, addrspace.NodeItem{
		ID:          id,
		Class:       addrspace.ClassVariable,
		BrowseName:  ua.QualifiedName{NamespaceIndex: 1, Name: "Samples"},
		AccessLevel: addrspace.AccessRead,
		DataType:    value.TypeInt32,
		ValueRank:   1,
		Initial:     value.Int32Array([]int32{1, 2, 3}),
	}))

	results := d.Read([]ReadRequest{{NodeID: id, AttributeID: AttributeValue, IndexRange: "x:y"}})
	require.Len(t, results, 1)
	assert.Equal(t, uaerrors.BadIndexRangeInvalid, results[0].Status)
}

func TestCallSqrtSeedScenario(t *testing.T) {
	d, uri := newTestDispatcher(t)
	object := ua.NewStringNodeID(1, "MathObject")
	methodID := ua.NewStringNodeID(1, "sqrt")

	require.NoError(t, d.store.CreateNode(uri, addrspace.NodeItem{
		ID: object, Class: addrspace.ClassObject, BrowseName: ua.QualifiedName{NamespaceIndex: 1, Name: "MathObject"},
	}))
	require.NoError(t, d.store.CreateMethodNode(uri, addrspace.NodeItem{
		ID: methodID, Class: addrspace.ClassMethod, BrowseName: ua.QualifiedName{NamespaceIndex: 1, Name: "sqrt"},
		Method: &addrspace.MethodDescriptor{
			InputArguments:  []addrspace.ArgumentDescriptor{{Name: "x", DataType: value.TypeDouble}},
			OutputArguments: []addrspace.ArgumentDescriptor{{Name: "result", DataType: value.TypeDouble}},
		},
	}, d.methods, func(in []value.Value) ([]value.Value, error) {
		x, _ := in[0].AsDouble()
		return []value.Value{value.Double(math.Sqrt(x))}, nil
	}))
	require.NoError(t, d.store.AddReference(1, "MathObject", 1, "sqrt", addrspace.ReferenceHasComponent, true))

	results := d.Call([]CallRequest{{ObjectID: object, MethodID: methodID, Inputs: []value.Value{value.Double(16.0)}}})
	require.Len(t, results, 1)
	require.Equal(t, uaerrors.Good, results[0].Status)
	got, err := results[0].Outputs[0].AsDouble()
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)
}

func TestCallRejectsMethodNotComponentOfObject(t *testing.T) {
	d, uri := newTestDispatcher(t)
	object := ua.NewStringNodeID(1, "Unrelated")
	methodID := ua.NewStringNodeID(1, "sqrt2")
	require.NoError(t, d.store.CreateNode(uri, addrspace.NodeItem{
		ID: object, Class: addrspace.ClassObject, BrowseName: ua.QualifiedName{NamespaceIndex: 1, Name: "Unrelated"},
	}))
	require.NoError(t, d.store.CreateMethodNode(uri, addrspace.NodeItem{
		ID: methodID, Class: addrspace.ClassMethod, BrowseName: ua.QualifiedName{NamespaceIndex: 1, Name: "sqrt2"},
		Method: &addrspace.MethodDescriptor{InputArguments: []addrspace.ArgumentDescriptor{{Name: "x", DataType: value.TypeDouble}}},
	}, d.methods, func(in []value.Value) ([]value.Value, error) { return in, nil }))

	results := d.Call([]CallRequest{{ObjectID: object, MethodID: methodID, Inputs: []value.Value{value.Double(1)}}})
	assert.Equal(t, uaerrors.BadInvalidArgument, results[0].Status)
}

func TestCallResolvesMethodInheritedThroughSupertype(t *testing.T) {
	d, uri := newTestDispatcher(t)
	baseType := ua.NewStringNodeID(1, "BaseType")
	subType := ua.NewStringNodeID(1, "SubType")
	object := ua.NewStringNodeID(1, "Instance")
	methodID := ua.NewStringNodeID(1, "reset")

	require.NoError(t, d.store.CreateNode(uri, addrspace.NodeItem{
		ID: baseType, Class: addrspace.ClassObjectType, BrowseName: ua.QualifiedName{NamespaceIndex: 1, Name: "BaseType"},
	}))
	require.NoError(t, d.store.CreateNode(uri, addrspace.NodeItem{
		ID: subType, Class: addrspace.ClassObjectType, BrowseName: ua.QualifiedName{NamespaceIndex: 1, Name: "SubType"},
	}))
	require.NoError(t, d.store.CreateNode(uri, addrspace.NodeItem{
		ID: object, Class: addrspace.ClassObject, BrowseName: ua.QualifiedName{NamespaceIndex: 1, Name: "Instance"},
	}))
	require.NoError(t, d.store.CreateMethodNode(uri, addrspace.NodeItem{
		ID: methodID, Class: addrspace.ClassMethod, BrowseName: ua.QualifiedName{NamespaceIndex: 1, Name: "reset"},
		Method: &addrspace.MethodDescriptor{},
	}, d.methods, func(in []value.Value) ([]value.Value, error) { return nil, nil }))

	require.NoError(t, d.store.AddReference(1, "BaseType", 1, "SubType", addrspace.ReferenceHasSubtype, true))
	require.NoError(t, d.store.AddReference(1, "Instance", 1, "SubType", addrspace.ReferenceHasTypeDefinition, true))
	require.NoError(t, d.store.AddReference(1, "BaseType", 1, "reset", addrspace.ReferenceHasComponent, true))

	results := d.Call([]CallRequest{{ObjectID: object, MethodID: methodID}})
	require.Len(t, results, 1)
	assert.Equal(t, uaerrors.Good, results[0].Status)
}

func TestPerItemErrorsDoNotShortCircuitBatch(t *testing.T) {
	d, uri := newTestDispatcher(t)
	good := ua.NewStringNodeID(1, "Good")
	require.NoError(t, d.store.CreateNode(uri, addrspace.NodeItem{
		ID: good, Class: addrspace.ClassVariable, BrowseName: ua.QualifiedName{NamespaceIndex: 1, Name: "Good"},
		AccessLevel: addrspace.AccessRead, DataType: value.TypeInt32, ValueRank: -1, Initial: value.Int32(9),
	}))
	bad := ua.NewStringNodeID(1, "Missing")

	results := d.Read([]ReadRequest{
		{NodeID: bad, AttributeID: AttributeValue},
		{NodeID: good, AttributeID: AttributeValue},
	})
	require.Len(t, results, 2)
	assert.Equal(t, uaerrors.BadNodeIdUnknown, results[0].Status)
	assert.Equal(t, uaerrors.Good, results[1].Status)
}
