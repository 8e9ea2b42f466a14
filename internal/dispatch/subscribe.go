package dispatch

import (
	"github.com/edgeiiot/opcua-runtime/internal/subscription"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
)

// CreateSubscription is a thin façade over subscription.Store.Create.
func (d *Dispatcher) CreateSubscription(params subscription.Parameters) (*subscription.Subscription, error) {
	return d.subs.Create(params)
}

// ModifySubscription is a thin façade over Subscription.Modify.
func (d *Dispatcher) ModifySubscription(id uint32, params subscription.Parameters) error {
	sub, err := d.subs.Get(id)
	if err != nil {
		return err
	}
	return sub.Modify(params)
}

// DeleteSubscription is a thin façade over Store.Delete.
func (d *Dispatcher) DeleteSubscription(id uint32) error {
	return d.subs.Delete(id)
}

// Republish is a thin façade over Subscription.Republish.
func (d *Dispatcher) Republish(subscriptionID uint32, sequenceNumber uint32) ([]subscription.Notification, error) {
	sub, err := d.subs.Get(subscriptionID)
	if err != nil {
		return nil, err
	}
	return sub.Republish(sequenceNumber)
}

// CreateMonitoredItems validates each target node exists in the store,
// then forwards to Subscription.CreateMonitoredItem with the node's
// declared minimum sampling interval.
func (d *Dispatcher) CreateMonitoredItems(subscriptionID uint32, items []subscription.MonitoredItem) ([]*subscription.MonitoredItem, []uaerrors.StatusCode) {
	sub, err := d.subs.Get(subscriptionID)
	if err != nil {
		results := make([]uaerrors.StatusCode, len(items))
		for i := range results {
			results[i] = uaerrors.CodeOf(err)
		}
		return make([]*subscription.MonitoredItem, len(items)), results
	}

	out := make([]*subscription.MonitoredItem, len(items))
	statuses := make([]uaerrors.StatusCode, len(items))
	for i, item := range items {
		view, err := d.store.Lookup(item.TargetNodeID)
		if err != nil {
			statuses[i] = uaerrors.CodeOf(err)
			continue
		}
		created, err := sub.CreateMonitoredItem(item, view.MinSamplingMillis)
		if err != nil {
			statuses[i] = uaerrors.CodeOf(err)
			continue
		}
		out[i] = created
		statuses[i] = uaerrors.Good
	}
	return out, statuses
}

// DeleteMonitoredItems is a thin façade over Subscription.DeleteMonitoredItems.
func (d *Dispatcher) DeleteMonitoredItems(subscriptionID uint32, itemIDs []uint32) error {
	sub, err := d.subs.Get(subscriptionID)
	if err != nil {
		return err
	}
	sub.DeleteMonitoredItems(itemIDs)
	return nil
}
