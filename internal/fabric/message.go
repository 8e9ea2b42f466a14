// Package fabric implements the asynchronous messaging fabric: bounded
// send/receive queues, a worker pool on the client side, and fan-out to
// per-kind application callbacks.
package fabric

import (
	"time"

	"github.com/edgeiiot/opcua-runtime/internal/dispatch"
	"github.com/edgeiiot/opcua-runtime/internal/subscription"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
)

// Kind discriminates a Message's payload: only the fields meaningful for
// Kind are populated.
type Kind uint8

const (
	KindResponse Kind = iota
	KindBrowseResponse
	KindMonitoredItemReport
	KindError
)

// Message is the sum type carried on both the send and receive queues.
type Message struct {
	Kind      Kind
	MessageID uint64
	SessionID uint64
	IssuedAt  time.Time

	// KindResponse
	ReadResults  []dispatch.ReadResult
	WriteResults []uaerrors.StatusCode
	CallResults  []dispatch.CallResult

	// KindBrowseResponse
	BrowseResults []BrowseResult

	// KindMonitoredItemReport
	SubscriptionID uint32
	Notifications  map[uint32][]subscription.Notification

	// KindError
	Err error
}

// BrowseResult is the wire-facing shape of a browse.Result, decoupled so
// fabric does not need to import the browse package just to carry a
// response.
type BrowseResult struct {
	SourceNodeID string
	BrowsePath   []string
	ValueAlias   string
}
