package fabric

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendQueueBackPressure(t *testing.T) {
	q := newBoundedQueue(2)
	require.NoError(t, q.Push(Message{Kind: KindResponse}))
	require.NoError(t, q.Push(Message{Kind: KindResponse}))
	err := q.Push(Message{Kind: KindResponse})
	require.Error(t, err)
	assert.Equal(t, uaerrors.BadResourceUnavailable, uaerrors.CodeOf(err))
}

func TestDrainOutboundReturnsAllQueued(t *testing.T) {
	f := New(Config{SendQueueCapacity: 4, RecvQueueCapacity: 4}, nil)
	require.NoError(t, f.Send(Message{Kind: KindResponse, MessageID: 1}))
	require.NoError(t, f.Send(Message{Kind: KindResponse, MessageID: 2}))
	out := f.DrainOutbound()
	require.Len(t, out, 2)
	assert.Equal(t, uint64(1), out[0].MessageID)
	assert.Equal(t, uint64(2), out[1].MessageID)
}

func TestRunDispatchesToHandler(t *testing.T) {
	var received int32
	var wg sync.WaitGroup
	wg.Add(3)
	f := New(Config{SendQueueCapacity: 4, RecvQueueCapacity: 4, Workers: 2}, func(m Message) {
		atomic.AddInt32(&received, 1)
		wg.Done()
	})
	go f.Run()

	require.NoError(t, f.Deliver(Message{Kind: KindResponse}))
	require.NoError(t, f.Deliver(Message{Kind: KindResponse}))
	require.NoError(t, f.Deliver(Message{Kind: KindResponse}))

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for handler dispatch")
	}
	assert.EqualValues(t, 3, atomic.LoadInt32(&received))
	f.Close()
}

func TestSortPublishDeliveryOrdersByPriorityThenID(t *testing.T) {
	msgs := []Message{
		{SubscriptionID: 3},
		{SubscriptionID: 1},
		{SubscriptionID: 2},
	}
	priority := map[uint32]uint8{1: 5, 2: 5, 3: 9}
	SortPublishDelivery(msgs, priority)
	require.Len(t, msgs, 3)
	assert.Equal(t, uint32(3), msgs[0].SubscriptionID)
	assert.Equal(t, uint32(1), msgs[1].SubscriptionID)
	assert.Equal(t, uint32(2), msgs[2].SubscriptionID)
}

func TestQueueCloseUnblocksPop(t *testing.T) {
	q := newBoundedQueue(2)
	done := make(chan bool)
	go func() {
		_, ok := q.Pop()
		done <- ok
	}()
	time.Sleep(10 * time.Millisecond)
	q.Close()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock on Close")
	}
}
