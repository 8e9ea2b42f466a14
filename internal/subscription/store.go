package subscription

import (
	"sync"

	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
)

// Store holds the subscriptions of one session. It has no link to
// session.Session: disconnecting a session leaves its Store unchanged, and
// a subscription leaves the Store only through Delete or DeleteClosed.
type Store struct {
	mu     sync.RWMutex
	subs   map[uint32]*Subscription
	nextID uint32
}

// NewStore returns an empty per-session subscription store.
func NewStore() *Store {
	return &Store{subs: make(map[uint32]*Subscription)}
}

// Create allocates the next subscription id and creates it.
func (st *Store) Create(params Parameters) (*Subscription, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.nextID++
	sub, err := New(st.nextID, params)
	if err != nil {
		st.nextID--
		return nil, err
	}
	st.subs[sub.ID] = sub
	return sub, nil
}

// Get returns the subscription for id.
func (st *Store) Get(id uint32) (*Subscription, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sub, ok := st.subs[id]
	if !ok {
		return nil, uaerrors.Newf(uaerrors.BadSubscriptionIdInvalid, "subscription %d not found", id)
	}
	return sub, nil
}

// Delete removes a subscription from the store entirely.
func (st *Store) Delete(id uint32) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	sub, ok := st.subs[id]
	if !ok {
		return uaerrors.Newf(uaerrors.BadSubscriptionIdInvalid, "subscription %d not found", id)
	}
	sub.Delete()
	delete(st.subs, id)
	return nil
}

// All returns every live subscription, for the sampling coordinator and
// the publish-priority ordering
func (st *Store) All() []*Subscription {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*Subscription, 0, len(st.subs))
	for _, sub := range st.subs {
		out = append(out, sub)
	}
	return out
}

// DeleteClosed prunes subscriptions that timed out via Tick and moved to
// the Closed state.
func (st *Store) DeleteClosed() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, sub := range st.subs {
		if sub.State() == StateClosed {
			delete(st.subs, id)
		}
	}
}
