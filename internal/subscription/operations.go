package subscription

import (
	"time"

	"github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
	"github.com/edgeiiot/opcua-runtime/internal/value"
)

// Modify updates parameters in place; the id never changes.
func (s *Subscription) Modify(params Parameters) error {
	if err := params.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return uaerrors.New(uaerrors.BadSubscriptionIdInvalid, "subscription is closed")
	}
	s.Params = params
	return nil
}

// Delete is terminal.
func (s *Subscription) Delete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
	s.items = make(map[uint32]*MonitoredItem)
}

// State reports the current lifecycle state.
func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CreateMonitoredItem adds a sampler for (targetNodeID, attributeID). The
// sampling interval is silently revised upward to minSamplingMillis if
// below the node's declared minimum; the revised value is returned.
func (it MonitoredItem) withRevisedInterval(minSamplingMillis float64) MonitoredItem {
	min := time.Duration(minSamplingMillis) * time.Millisecond
	if min > 0 && it.SamplingInterval < min {
		it.SamplingInterval = min
	}
	return it
}

func (s *Subscription) CreateMonitoredItem(item MonitoredItem, minSamplingMillis float64) (*MonitoredItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil, uaerrors.New(uaerrors.BadSubscriptionIdInvalid, "subscription is closed")
	}
	item = item.withRevisedInterval(minSamplingMillis)
	s.nextItem++
	item.ID = s.nextItem
	if item.QueueSize <= 0 {
		item.QueueSize = 1
	}
	stored := item
	s.items[stored.ID] = &stored
	return &stored, nil
}

// DeleteMonitoredItems removes monitored items by id.
func (s *Subscription) DeleteMonitoredItems(ids []uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.items, id)
	}
}

// MarkUnknown permanently disables a monitored item whose target node was
// deleted from the node store.
func (s *Subscription) MarkUnknown(target ua.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.TargetNodeID == target {
			it.unknown = true
		}
	}
}

// Items returns a snapshot of every monitored item currently owned by
// the subscription, for the sampling coordinator to walk each tick.
func (s *Subscription) Items() []*MonitoredItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*MonitoredItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	return out
}

// Sample is invoked once per monitored item on every sampling tick. The
// caller (the sampling coordinator) supplies the freshly read current
// value and timestamps; Sample compares it against the item's last
// reported value under its deadband rule and enqueues a notification if
// the comparison trips.
func (it *MonitoredItem) Sample(current value.Value, source, server time.Time) {
	if it.unknown {
		return
	}
	if it.hasReported && !tripsDeadband(it.Filter, it.lastReported, current) {
		return
	}
	it.lastReported = current
	it.hasReported = true

	n := Notification{ClientHandle: it.ClientHandle, Value: current, SourceTime: source, ServerTime: server, StatusCode: uaerrors.Good}
	if it.queue.Len() >= it.QueueSize {
		// drop oldest, mark overflow on the newest.
		if it.QueueSize > 0 {
			it.queue.PopFront()
		}
		n.Overflow = true
	}
	it.queue.PushBack(n)
}

func tripsDeadband(f Filter, last, current value.Value) bool {
	switch f.Kind {
	case DeadbandNone:
		return !last.Equal(current)
	case DeadbandAbsolute:
		lf, err1 := last.AsDouble()
		cf, err2 := current.AsDouble()
		if err1 != nil || err2 != nil {
			return !last.Equal(current)
		}
		diff := cf - lf
		if diff < 0 {
			diff = -diff
		}
		return diff > f.Value
	case DeadbandPercent:
		lf, err1 := last.AsDouble()
		cf, err2 := current.AsDouble()
		if err1 != nil || err2 != nil {
			return !last.Equal(current)
		}
		if lf == 0 {
			return cf != 0
		}
		pct := (cf - lf) / lf * 100
		if pct < 0 {
			pct = -pct
		}
		return pct > f.Value
	default:
		return !last.Equal(current)
	}
}

// DrainNotifications collects every monitored item's pending
// notifications for a Publish response, in priority order (the caller is
// expected to have already sorted subscriptions by Params.Priority
// descending, then ID ascending). It assigns the next
// sequence number and records it in the retention window for Republish.
func (s *Subscription) DrainNotifications() (uint32, map[uint32][]Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[uint32][]Notification)
	hasAny := false
	for id, it := range s.items {
		if it.queue.Len() == 0 {
			continue
		}
		drained := make([]Notification, 0, it.queue.Len())
		for it.queue.Len() > 0 {
			drained = append(drained, it.queue.PopFront())
		}
		out[id] = drained
		hasAny = true
	}
	if !hasAny {
		return 0, nil, false
	}
	s.lastSequence++
	seq := s.lastSequence
	s.recordSent(seq, out)
	return seq, out, true
}

func (s *Subscription) recordSent(seq uint32, byItem map[uint32][]Notification) {
	var flat []Notification
	for _, ns := range byItem {
		flat = append(flat, ns...)
	}
	s.sentByseq[seq] = flat
	s.sentSequences = append(s.sentSequences, seq)
	if len(s.sentSequences) > sequenceRetentionWindow {
		evict := s.sentSequences[0]
		s.sentSequences = s.sentSequences[1:]
		delete(s.sentByseq, evict)
	}
}

// Republish retransmits a previously sent notification batch if it is
// still within the retention window.
func (s *Subscription) Republish(sequenceNumber uint32) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.sentByseq[sequenceNumber]
	if !ok {
		return nil, uaerrors.New(uaerrors.BadMessageNotAvailable, "sequence number not in retention window")
	}
	return ns, nil
}

// Tick advances the lifetime clock by elapsed; if no publish request has drained the
// subscription within lifetime x publishingInterval, it closes. published
// should be true when a Publish response was actually sent during this
// interval.
func (s *Subscription) Tick(elapsed time.Duration, published bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return
	}
	if published {
		s.sinceLastPublish = 0
		return
	}
	s.sinceLastPublish += elapsed
	maxIdle := time.Duration(s.Params.LifetimeCount) * s.Params.PublishingInterval
	if maxIdle > 0 && s.sinceLastPublish >= maxIdle {
		s.state = StateClosed
		s.items = make(map[uint32]*MonitoredItem)
	}
}
