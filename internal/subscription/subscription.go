// Package subscription implements the subscription store:
// per-session subscription and monitored-item state, sampling, and the
// republish retention window.
package subscription

import (
	"sync"
	"time"

	"github.com/gammazero/deque"

	"github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
	"github.com/edgeiiot/opcua-runtime/internal/value"
)

// DeadbandKind selects how a monitored item compares successive values.
type DeadbandKind uint8

const (
	DeadbandNone DeadbandKind = iota
	DeadbandAbsolute
	DeadbandPercent
)

// Filter is a monitored item's data-change filter.
type Filter struct {
	Kind  DeadbandKind
	Value float64 // absolute units, or percent of the last reported value for DeadbandPercent
}

// State is a subscription's lifecycle state.
type State uint8

const (
	StateCreated State = iota
	StateActive
	StateClosed
)

// Notification is one queued data-change report for a monitored item.
type Notification struct {
	ClientHandle uint32
	Value        value.Value
	SourceTime   time.Time
	ServerTime   time.Time
	StatusCode   uaerrors.StatusCode
	Overflow     bool
}

// MonitoredItem samples one (NodeId, attribute) pair on behalf of a
// subscription.
type MonitoredItem struct {
	ID               uint32
	ClientHandle     uint32
	TargetNodeID     ua.NodeID
	AttributeID      uint32
	SamplingInterval time.Duration
	QueueSize        int
	Filter           Filter

	lastReported value.Value
	hasReported  bool
	queue        deque.Deque[Notification]
	// unknown is set permanently once the target node is deleted: its
	// monitored item becomes permanently marked BadNodeIdUnknown and
	// stops firing.
	unknown bool
}

// Parameters configure a Subscription at Create or Modify time.
type Parameters struct {
	PublishingInterval     time.Duration
	LifetimeCount          uint32
	MaxKeepAliveCount      uint32
	MaxNotificationsPerPub uint32
	Priority               uint8
	QueueSize              int
	PublishingEnabled      bool
}

// Subscription aggregates monitored items with a shared publishing
// cadence.
type Subscription struct {
	mu sync.Mutex

	ID     uint32
	Params Parameters
	state  State

	items    map[uint32]*MonitoredItem
	nextItem uint32

	sentSequences []uint32
	sentByseq     map[uint32][]Notification
	lastSequence  uint32

	sinceLastPublish time.Duration
}

const sequenceRetentionWindow = 100

// Validate checks a Parameters block against the runtime's invariants:
// KeepAliveCount must be an explicit positive integer, never derived from
// a zero publishing interval.
func (p Parameters) Validate() error {
	if p.MaxKeepAliveCount == 0 {
		return uaerrors.New(uaerrors.BadInvalidArgument, "KeepAliveCount must be a positive integer")
	}
	if p.PublishingInterval <= 0 {
		return uaerrors.New(uaerrors.BadInvalidArgument, "PublishingInterval must be positive")
	}
	return nil
}

// New creates a subscription in the Active state.
func New(id uint32, params Parameters) (*Subscription, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Subscription{
		ID:        id,
		Params:    params,
		state:     StateActive,
		items:     make(map[uint32]*MonitoredItem),
		sentByseq: make(map[uint32][]Notification),
	}, nil
}
