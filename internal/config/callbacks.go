package config

import "sync"

// Callbacks holds the application-supplied callback functions of the
// runtime's configuration table. All callbacks receive an immutable
// response object; mutation by the callback is undefined behaviour. The
// struct is mutex-guarded so callbacks can be (re)registered at runtime
// without a restart.
type Callbacks struct {
	mu sync.RWMutex

	responseCb      func(messageID uint64, result any, err error)
	monitoredItemCb func(subscriptionID uint32, sequenceNumber uint32)
	errorCb         func(err error)
	browseCb        func(sourceNodeID string, path []string, valueAlias string)
	startCb         func()
	stopCb          func()
	networkCb       func(connected bool)
	endpointFoundCb func(endpointURL string)
	deviceFoundCb   func(applicationURI string)
}

// Set registers every callback at once; a nil argument leaves that slot
// untouched.
func (c *Callbacks) Set(
	responseCb func(uint64, any, error),
	monitoredItemCb func(uint32, uint32),
	errorCb func(error),
	browseCb func(string, []string, string),
	startCb, stopCb func(),
	networkCb func(bool),
	endpointFoundCb func(string),
	deviceFoundCb func(string),
) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if responseCb != nil {
		c.responseCb = responseCb
	}
	if monitoredItemCb != nil {
		c.monitoredItemCb = monitoredItemCb
	}
	if errorCb != nil {
		c.errorCb = errorCb
	}
	if browseCb != nil {
		c.browseCb = browseCb
	}
	if startCb != nil {
		c.startCb = startCb
	}
	if stopCb != nil {
		c.stopCb = stopCb
	}
	if networkCb != nil {
		c.networkCb = networkCb
	}
	if endpointFoundCb != nil {
		c.endpointFoundCb = endpointFoundCb
	}
	if deviceFoundCb != nil {
		c.deviceFoundCb = deviceFoundCb
	}
}

func (c *Callbacks) OnResponse(messageID uint64, result any, err error) {
	c.mu.RLock()
	cb := c.responseCb
	c.mu.RUnlock()
	if cb != nil {
		cb(messageID, result, err)
	}
}

func (c *Callbacks) OnMonitoredItem(subscriptionID, sequenceNumber uint32) {
	c.mu.RLock()
	cb := c.monitoredItemCb
	c.mu.RUnlock()
	if cb != nil {
		cb(subscriptionID, sequenceNumber)
	}
}

func (c *Callbacks) OnError(err error) {
	c.mu.RLock()
	cb := c.errorCb
	c.mu.RUnlock()
	if cb != nil {
		cb(err)
	}
}

func (c *Callbacks) OnBrowse(sourceNodeID string, path []string, valueAlias string) {
	c.mu.RLock()
	cb := c.browseCb
	c.mu.RUnlock()
	if cb != nil {
		cb(sourceNodeID, path, valueAlias)
	}
}

func (c *Callbacks) OnStart() {
	c.mu.RLock()
	cb := c.startCb
	c.mu.RUnlock()
	if cb != nil {
		cb()
	}
}

func (c *Callbacks) OnStop() {
	c.mu.RLock()
	cb := c.stopCb
	c.mu.RUnlock()
	if cb != nil {
		cb()
	}
}

func (c *Callbacks) OnNetwork(connected bool) {
	c.mu.RLock()
	cb := c.networkCb
	c.mu.RUnlock()
	if cb != nil {
		cb(connected)
	}
}

func (c *Callbacks) OnEndpointFound(endpointURL string) {
	c.mu.RLock()
	cb := c.endpointFoundCb
	c.mu.RUnlock()
	if cb != nil {
		cb(endpointURL)
	}
}

func (c *Callbacks) OnDeviceFound(applicationURI string) {
	c.mu.RLock()
	cb := c.deviceFoundCb
	c.mu.RUnlock()
	if cb != nil {
		cb(applicationURI)
	}
}
