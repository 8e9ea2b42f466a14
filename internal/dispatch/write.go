package dispatch

import (
	"github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
	"github.com/edgeiiot/opcua-runtime/internal/value"
)

// WriteRequest is one item of a Write service batch. Items
// are committed in slice order ("writes within a single batch are applied
// in request order") though each item's success/failure is independent.
type WriteRequest struct {
	NodeID      ua.NodeID
	AttributeID uint32
	IndexRange  string
	Value       value.Value
}

// Write commits each item in slice order; an item's success or failure is
// independent of the others.
func (d *Dispatcher) Write(reqs []WriteRequest) []uaerrors.StatusCode {
	out := make([]uaerrors.StatusCode, len(reqs))
	for i, r := range reqs {
		out[i] = d.writeOne(r)
	}
	return out
}

func (d *Dispatcher) writeOne(r WriteRequest) uaerrors.StatusCode {
	if r.AttributeID != AttributeValue {
		return uaerrors.BadInvalidArgument
	}
	if r.IndexRange == "" {
		if err := d.store.WriteValue(r.NodeID, r.Value); err != nil {
			return uaerrors.CodeOf(err)
		}
		return uaerrors.Good
	}
	rng, err := ua.ParseIndexRange(r.IndexRange)
	if err != nil {
		return uaerrors.CodeOf(err)
	}
	if err := d.store.WriteValueRange(r.NodeID, r.Value, rng.Lo, rng.Hi); err != nil {
		return uaerrors.CodeOf(err)
	}
	return uaerrors.Good
}
