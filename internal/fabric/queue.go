package fabric

import (
	"sync"

	"github.com/gammazero/deque"

	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
)

// boundedQueue is a FIFO of Message bounded at capacity, used for both the
// send and receive sides of a Fabric. Pushing past capacity fails with
// BadResourceUnavailable rather than blocking "Back
// pressure": a slow consumer must not stall the producer indefinitely.
type boundedQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    deque.Deque[Message]
	capacity int
	closed   bool
}

func newBoundedQueue(capacity int) *boundedQueue {
	q := &boundedQueue{capacity: capacity}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues msg, failing BadResourceUnavailable if the queue is full.
func (q *boundedQueue) Push(msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return uaerrors.New(uaerrors.BadConnectionClosed, "queue is closed")
	}
	if q.items.Len() >= q.capacity {
		return uaerrors.New(uaerrors.BadResourceUnavailable, "queue is at capacity")
	}
	q.items.PushBack(msg)
	q.cond.Signal()
	return nil
}

// Pop blocks until a message is available or the queue is closed, in
// which case it returns ok=false.
func (q *boundedQueue) Pop() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.items.Len() == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.items.Len() == 0 {
		return Message{}, false
	}
	return q.items.PopFront(), true
}

// TryPop returns immediately with ok=false if nothing is queued.
func (q *boundedQueue) TryPop() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Len() == 0 {
		return Message{}, false
	}
	return q.items.PopFront(), true
}

func (q *boundedQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

func (q *boundedQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
