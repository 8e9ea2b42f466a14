package subscription

import (
	"testing"
	"time"

	"github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
	"github.com/edgeiiot/opcua-runtime/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() Parameters {
	return Parameters{
		PublishingInterval:     100 * time.Millisecond,
		LifetimeCount:          3,
		MaxKeepAliveCount:      3,
		MaxNotificationsPerPub: 100,
		QueueSize:              10,
		PublishingEnabled:      true,
	}
}

func TestZeroKeepAliveCountRejected(t *testing.T) {
	p := validParams()
	p.MaxKeepAliveCount = 0
	_, err := New(1, p)
	require.Error(t, err)
	assert.Equal(t, uaerrors.BadInvalidArgument, uaerrors.CodeOf(err))
}

func TestSubscriptionLifecycleSeedScenario(t *testing.T) {
	store := NewStore()
	sub, err := store.Create(validParams())
	require.NoError(t, err)
	assert.Equal(t, StateActive, sub.State())

	modified := validParams()
	modified.PublishingInterval = 500 * time.Millisecond
	require.NoError(t, sub.Modify(modified))
	assert.Equal(t, 500*time.Millisecond, sub.Params.PublishingInterval)

	require.NoError(t, store.Delete(sub.ID))
	_, err = store.Get(sub.ID)
	assert.Error(t, err)
}

func TestSamplingDeadbandAbsolute(t *testing.T) {
	sub, err := New(1, validParams())
	require.NoError(t, err)
	item, err := sub.CreateMonitoredItem(MonitoredItem{
		ClientHandle: 7,
		TargetNodeID: ua.NewStringNodeID(1, "UInt32"),
		QueueSize:    5,
		Filter:       Filter{Kind: DeadbandAbsolute, Value: 1.0},
	}, 0)
	require.NoError(t, err)

	item.Sample(value.Double(10.0), time.Now(), time.Now())
	item.Sample(value.Double(10.5), time.Now(), time.Now()) // within deadband, dropped
	item.Sample(value.Double(12.0), time.Now(), time.Now()) // trips

	assert.Equal(t, 2, item.queue.Len())
}

func TestMonitoredItemQueueOverflowMarksNewest(t *testing.T) {
	sub, err := New(1, validParams())
	require.NoError(t, err)
	item, err := sub.CreateMonitoredItem(MonitoredItem{
		TargetNodeID: ua.NewStringNodeID(1, "X"),
		QueueSize:    2,
		Filter:       Filter{Kind: DeadbandNone},
	}, 0)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		item.Sample(value.Int32(int32(i)), time.Now(), time.Now())
	}
	require.Equal(t, 2, item.queue.Len())
	assert.True(t, item.queue.Back().Overflow)
}

func TestSamplingIntervalRevisedUpward(t *testing.T) {
	sub, err := New(1, validParams())
	require.NoError(t, err)
	item, err := sub.CreateMonitoredItem(MonitoredItem{
		TargetNodeID:     ua.NewStringNodeID(1, "Slow"),
		SamplingInterval: 10 * time.Millisecond,
	}, 1000) // server minimum is 1000ms
	require.NoError(t, err)
	assert.Equal(t, 1000*time.Millisecond, item.SamplingInterval)
}

func TestRepublishWithinWindow(t *testing.T) {
	sub, err := New(1, validParams())
	require.NoError(t, err)
	item, err := sub.CreateMonitoredItem(MonitoredItem{TargetNodeID: ua.NewStringNodeID(1, "X"), QueueSize: 4}, 0)
	require.NoError(t, err)
	item.Sample(value.Int32(1), time.Now(), time.Now())

	seq, _, ok := sub.DrainNotifications()
	require.True(t, ok)

	got, err := sub.Republish(seq)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = sub.Republish(seq + 999)
	require.Error(t, err)
	assert.Equal(t, uaerrors.BadMessageNotAvailable, uaerrors.CodeOf(err))
}

func TestTickClosesSubscriptionAfterLifetimeExpiry(t *testing.T) {
	p := validParams()
	p.LifetimeCount = 2
	p.PublishingInterval = 10 * time.Millisecond
	sub, err := New(1, p)
	require.NoError(t, err)

	sub.Tick(10*time.Millisecond, false)
	assert.Equal(t, StateActive, sub.State())
	sub.Tick(10*time.Millisecond, false)
	assert.Equal(t, StateClosed, sub.State())
}

func TestSortByPublishPriority(t *testing.T) {
	low, _ := New(5, func() Parameters { p := validParams(); p.Priority = 1; return p }())
	high, _ := New(1, func() Parameters { p := validParams(); p.Priority = 9; return p }())
	tieA, _ := New(2, func() Parameters { p := validParams(); p.Priority = 5; return p }())
	tieB, _ := New(3, func() Parameters { p := validParams(); p.Priority = 5; return p }())

	subs := []*Subscription{low, tieB, high, tieA}
	SortByPublishPriority(subs)
	assert.Equal(t, []uint32{1, 2, 3, 5}, []uint32{subs[0].ID, subs[1].ID, subs[2].ID, subs[3].ID})
}

func TestMarkUnknownStopsFurtherSampling(t *testing.T) {
	sub, err := New(1, validParams())
	require.NoError(t, err)
	target := ua.NewStringNodeID(1, "Deleted")
	item, err := sub.CreateMonitoredItem(MonitoredItem{TargetNodeID: target, QueueSize: 4}, 0)
	require.NoError(t, err)

	sub.MarkUnknown(target)
	item.Sample(value.Int32(1), time.Now(), time.Now())
	assert.Equal(t, 0, item.queue.Len())
}
