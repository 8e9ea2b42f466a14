package fabric

import (
	"sort"

	"github.com/gammazero/workerpool"
)

// Handler processes one inbound Message. Handlers are started in the
// order their messages were received; with more than one worker, any two
// handlers, including two for the same SessionID, may run concurrently.
type Handler func(Message)

// Fabric is the asynchronous messaging fabric: a bounded
// send queue and a bounded receive queue connected by a worker pool.
type Fabric struct {
	send    *boundedQueue
	recv    *boundedQueue
	pool    *workerpool.WorkerPool
	handler Handler
}

// Config bounds the fabric's queues and worker concurrency.
type Config struct {
	SendQueueCapacity int
	RecvQueueCapacity int
	Workers          int
}

// New constructs a Fabric. Workers defaults to 4 if unset.
func New(cfg Config, handler Handler) *Fabric {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Fabric{
		send:    newBoundedQueue(cfg.SendQueueCapacity),
		recv:    newBoundedQueue(cfg.RecvQueueCapacity),
		pool:    workerpool.New(workers),
		handler: handler,
	}
}

// Send enqueues an outbound message (the client-to-server direction);
// it fails BadResourceUnavailable under back pressure rather than
// blocking.
func (f *Fabric) Send(msg Message) error {
	return f.send.Push(msg)
}

// TrySend is an alias retained for callers that want the non-blocking
// semantics spelled out explicitly.
func (f *Fabric) TrySend(msg Message) error {
	return f.send.Push(msg)
}

// Deliver enqueues an inbound message for dispatch to the handler pool.
func (f *Fabric) Deliver(msg Message) error {
	return f.recv.Push(msg)
}

// Run drains the receive queue, submitting each message to the worker
// pool. It blocks until Close is called. This single goroutine submits
// jobs in receive order and the pool starts them in FIFO order, so
// handlers start in receive order; handlers for the same session are not
// serialised and may overlap when more than one worker is configured.
func (f *Fabric) Run() {
	for {
		msg, ok := f.recv.Pop()
		if !ok {
			return
		}
		m := msg
		f.pool.Submit(func() {
			if f.handler != nil {
				f.handler(m)
			}
		})
	}
}

// Close stops accepting new work and waits for in-flight handlers to
// finish.
func (f *Fabric) Close() {
	f.send.Close()
	f.recv.Close()
	f.pool.StopWait()
}

// DrainOutbound removes and returns every currently queued outbound
// message, most commonly used by a transport adapter's write loop.
func (f *Fabric) DrainOutbound() []Message {
	var out []Message
	for {
		msg, ok := f.send.TryPop()
		if !ok {
			break
		}
		out = append(out, msg)
	}
	return out
}

// SortPublishDelivery orders a batch of KindMonitoredItemReport messages
// by descending subscription priority and ascending subscription id,
// mirroring internal/subscription.SortByPublishPriority for the wire
// side of the same concern.
func SortPublishDelivery(msgs []Message, priority map[uint32]uint8) {
	sort.SliceStable(msgs, func(i, j int) bool {
		pi, pj := priority[msgs[i].SubscriptionID], priority[msgs[j].SubscriptionID]
		if pi != pj {
			return pi > pj
		}
		return msgs[i].SubscriptionID < msgs[j].SubscriptionID
	})
}
