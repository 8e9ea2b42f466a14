package coordinator

import (
	"testing"
	"time"

	"github.com/edgeiiot/opcua-runtime/internal/addrspace"
	"github.com/edgeiiot/opcua-runtime/internal/subscription"
	"github.com/edgeiiot/opcua-runtime/internal/ua"
	"github.com/edgeiiot/opcua-runtime/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickSamplesActiveSubscriptionItems(t *testing.T) {
	store := addrspace.NewStore()
	uri := "urn:test:coordinator"
	_, err := store.CreateNamespace(uri, ua.NewNumericNodeID(1, 1),
		ua.QualifiedName{NamespaceIndex: 1, Name: "Root"}, ua.LocalizedText{Locale: "en", Text: "Root"})
	require.NoError(t, err)

	id := ua.NewStringNodeID(1, "Temp")
	require.NoError(t, store.CreateNode(uri, addrspace.NodeItem{
		ID: id, Class: addrspace.ClassVariable, BrowseName: ua.QualifiedName{NamespaceIndex: 1, Name: "Temp"},
		AccessLevel: addrspace.AccessRead | addrspace.AccessWrite, DataType: value.TypeDouble, ValueRank: -1,
		Initial: value.Double(20.0),
	}))

	subs := subscription.NewStore()
	sub, err := subs.Create(subscription.Parameters{
		PublishingInterval: time.Second, LifetimeCount: 100, MaxKeepAliveCount: 10,
		MaxNotificationsPerPub: 10, PublishingEnabled: true,
	})
	require.NoError(t, err)
	item, err := sub.CreateMonitoredItem(subscription.MonitoredItem{TargetNodeID: id, QueueSize: 4}, 0)
	require.NoError(t, err)

	c := New(store, subs)
	c.Tick(time.Now())

	_, notifications, ok := sub.DrainNotifications()
	require.True(t, ok)
	require.Contains(t, notifications, item.ID)
	assert.Len(t, notifications[item.ID], 1)
	got, err := notifications[item.ID][0].Value.AsDouble()
	require.NoError(t, err)
	assert.Equal(t, 20.0, got)
}

func TestTickSkipsClosedSubscriptions(t *testing.T) {
	store := addrspace.NewStore()
	subs := subscription.NewStore()
	sub, err := subs.Create(subscription.Parameters{
		PublishingInterval: time.Second, LifetimeCount: 100, MaxKeepAliveCount: 10,
		MaxNotificationsPerPub: 10,
	})
	require.NoError(t, err)
	sub.Delete()

	c := New(store, subs)
	assert.NotPanics(t, func() { c.Tick(time.Now()) })
}
