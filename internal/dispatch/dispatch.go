// Package dispatch implements the service dispatcher: the
// single entry point per OPC UA service, batch-in/batch-out, with
// per-item status codes that never short-circuit the batch.
package dispatch

import (
	"time"

	"github.com/edgeiiot/opcua-runtime/internal/addrspace"
	"github.com/edgeiiot/opcua-runtime/internal/method"
	"github.com/edgeiiot/opcua-runtime/internal/subscription"
	"github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
	"github.com/edgeiiot/opcua-runtime/internal/value"
)

// Clock lets tests and the transport adapter supply deterministic
// timestamps for Read's source/server time attributes.
type Clock func() time.Time

// Dispatcher is the single point of entry for every service the runtime
// supports; it is the only component allowed to mutate the node store
// during a request.
type Dispatcher struct {
	store   *addrspace.Store
	methods *method.Registry
	subs    *subscription.Store
	now     Clock
}

// New builds a Dispatcher over the given node store, method registry, and
// the subscription store owned by the session this dispatcher serves.
// Subscriptions are owned by their session, so each session gets its own
// Dispatcher over its own subscription.Store.
func New(store *addrspace.Store, methods *method.Registry, subs *subscription.Store) *Dispatcher {
	return &Dispatcher{store: store, methods: methods, subs: subs, now: time.Now}
}

// ReadRequest is one item of a Read service batch.
type ReadRequest struct {
	NodeID      ua.NodeID
	AttributeID uint32
	IndexRange  string // empty = whole value
}

// ReadResult is the corresponding per-item result.
type ReadResult struct {
	Value      value.Value
	SourceTime time.Time
	ServerTime time.Time
	Status     uaerrors.StatusCode
}

// Read locates each node, checks read access, projects the requested
// attribute, and applies a numeric range if present.
func (d *Dispatcher) Read(reqs []ReadRequest) []ReadResult {
	out := make([]ReadResult, len(reqs))
	now := d.now()
	for i, r := range reqs {
		out[i] = d.readOne(r, now)
	}
	return out
}

func (d *Dispatcher) readOne(r ReadRequest, now time.Time) ReadResult {
	view, err := d.store.Lookup(r.NodeID)
	if err != nil {
		return ReadResult{Status: uaerrors.CodeOf(err)}
	}
	if r.AttributeID == AttributeValue {
		if view.Class != addrspace.ClassVariable && view.Class != addrspace.ClassVariableType {
			return ReadResult{Status: uaerrors.BadTypeMismatch}
		}
		if view.AccessLevel&addrspace.AccessRead == 0 {
			return ReadResult{Status: uaerrors.BadUserAccessDenied}
		}
		v := view.Current
		if r.IndexRange != "" {
			v, err = applyIndexRange(v, r.IndexRange)
			if err != nil {
				return ReadResult{Status: uaerrors.CodeOf(err)}
			}
		}
		return ReadResult{Value: v, SourceTime: now, ServerTime: now, Status: uaerrors.Good}
	}
	return readNonValueAttribute(view, r.AttributeID, now)
}

// Attribute ids used by this runtime, numbered from 1 in this order. Read
// answers NodeID, NodeClass, BrowseName, DisplayName and Value; for
// DataType, ValueRank and AccessLevel it returns BadInvalidArgument.
const (
	AttributeNodeID = iota + 1
	AttributeNodeClass
	AttributeBrowseName
	AttributeDisplayName
	AttributeValue
	AttributeDataType
	AttributeValueRank
	AttributeAccessLevel
)

func readNonValueAttribute(view addrspace.NodeView, attr uint32, now time.Time) ReadResult {
	switch attr {
	case AttributeNodeID:
		return ReadResult{Value: value.NodeIDValue(view.ID), SourceTime: now, ServerTime: now, Status: uaerrors.Good}
	case AttributeBrowseName:
		return ReadResult{Value: value.QualifiedNameValue(view.BrowseName), SourceTime: now, ServerTime: now, Status: uaerrors.Good}
	case AttributeDisplayName:
		return ReadResult{Value: value.LocalizedTextValue(view.DisplayName), SourceTime: now, ServerTime: now, Status: uaerrors.Good}
	case AttributeNodeClass:
		return ReadResult{Value: value.Int32(int32(view.Class)), SourceTime: now, ServerTime: now, Status: uaerrors.Good}
	default:
		return ReadResult{Status: uaerrors.BadInvalidArgument}
	}
}

func applyIndexRange(v value.Value, indexRange string) (value.Value, error) {
	rng, err := ua.ParseIndexRange(indexRange)
	if err != nil {
		return value.Value{}, err
	}
	return v.Slice(rng.Lo, rng.Hi)
}
