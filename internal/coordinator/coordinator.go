// Package coordinator drives the periodic sampling tick:
// once per tick, every Active subscription's monitored items are
// sampled against the current node store value, feeding deadband
// comparison and notification enqueue.
package coordinator

import (
	"sync"
	"time"

	"github.com/edgeiiot/opcua-runtime/internal/addrspace"
	"github.com/edgeiiot/opcua-runtime/internal/subscription"
)

// SubscriptionSource supplies the subscriptions a tick should sample.
// Satisfied by *subscription.Store.
type SubscriptionSource interface {
	All() []*subscription.Subscription
}

// Coordinator periodically samples every monitored item across every
// active subscription.
type Coordinator struct {
	mu sync.Mutex

	store *addrspace.Store
	subs  SubscriptionSource

	lastUpdate time.Time
	started    bool
}

// New constructs a Coordinator over the given node store and
// subscription source.
func New(store *addrspace.Store, subs SubscriptionSource) *Coordinator {
	return &Coordinator{store: store, subs: subs}
}

// Tick samples every monitored item of every Active subscription known to
// the subscription source, then advances each subscription's lifetime
// clock. now is the wall-clock time of this tick; it is also used as
// both the source and server timestamp of the sample.
func (c *Coordinator) Tick(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var elapsed time.Duration
	if c.started {
		elapsed = now.Sub(c.lastUpdate)
	}
	c.lastUpdate = now
	c.started = true

	for _, sub := range c.subs.All() {
		published := c.sampleSubscription(sub, now)
		sub.Tick(elapsed, published)
	}
}

func (c *Coordinator) sampleSubscription(sub *subscription.Subscription, now time.Time) bool {
	if sub.State() != subscription.StateActive {
		return false
	}
	sampled := false
	for _, item := range sub.Items() {
		view, err := c.store.Lookup(item.TargetNodeID)
		if err != nil {
			sub.MarkUnknown(item.TargetNodeID)
			continue
		}
		item.Sample(view.Current, now, now)
		sampled = true
	}
	return sampled
}
