// Package sessionmgr implements the session manager: an
// endpointUri -> session map, discovery (FindServers/GetEndpoints), and
// optional auto-connect after discovery.
package sessionmgr

import (
	"context"
	"sync"
	"time"

	"github.com/edgeiiot/opcua-runtime/internal/session"
	"github.com/edgeiiot/opcua-runtime/internal/uaerrors"
)

// ApplicationType enumerates the OPC UA application type bitmask used by
// the "supportedApplicationTypes" configuration field.
type ApplicationType uint8

const (
	ApplicationServer ApplicationType = 1 << iota
	ApplicationClient
	ApplicationClientAndServer
	ApplicationDiscoveryServer
)

// ApplicationConfig is one entry of a FindServers result.
type ApplicationConfig struct {
	ApplicationURI      string
	ProductURI          string
	ApplicationName     string
	ApplicationType     ApplicationType
	GatewayServerURI    string
	DiscoveryProfileURI string
	DiscoveryURLs       []string
}

// EndpointDescription is one entry of a GetEndpoints result.
type EndpointDescription struct {
	EndpointURL    string
	SecurityMode   string
	SecurityPolicy string
}

// Discoverer performs the wire-level FindServers/GetEndpoints calls; a
// production implementation is backed by internal/transport/clienttransport,
// which wraps gopcua/opcua. Kept as an interface so sessionmgr never
// imports the vendor library directly.
type Discoverer interface {
	FindServers(ctx context.Context, discoveryURI string) ([]ApplicationConfig, error)
	GetEndpoints(ctx context.Context, discoveryURI string) ([]EndpointDescription, error)
}

// Manager owns every session keyed by endpoint URI.
type Manager struct {
	mu               sync.Mutex
	sessions         map[string]*session.Session
	discoverer       Discoverer
	requestTimeout   time.Duration
	maxContinuations int
	autoConnect      bool

	endpointFoundCb func(EndpointDescription)
	deviceFoundCb   func(ApplicationConfig)
}

// Options configures a Manager.
type Options struct {
	RequestTimeout   time.Duration
	MaxContinuations int
	AutoConnect      bool // default off
	EndpointFoundCb  func(EndpointDescription)
	DeviceFoundCb    func(ApplicationConfig)
}

// New constructs a Manager bound to the given Discoverer.
func New(discoverer Discoverer, opts Options) *Manager {
	return &Manager{
		sessions:         make(map[string]*session.Session),
		discoverer:       discoverer,
		requestTimeout:   opts.RequestTimeout,
		maxContinuations: opts.MaxContinuations,
		autoConnect:      opts.AutoConnect,
		endpointFoundCb:  opts.EndpointFoundCb,
		deviceFoundCb:    opts.DeviceFoundCb,
	}
}

// FindServers performs OPC UA Discovery against discoveryURI, reporting
// each ApplicationConfig found through the configured deviceFoundCb.
func (m *Manager) FindServers(ctx context.Context, discoveryURI string) ([]ApplicationConfig, error) {
	apps, err := m.discoverer.FindServers(ctx, discoveryURI)
	if err != nil {
		return nil, err
	}
	if m.deviceFoundCb != nil {
		for _, app := range apps {
			m.deviceFoundCb(app)
		}
	}
	return apps, nil
}

// GetEndpointInfo performs GetEndpoints and, only if auto-connect is
// enabled, starts a session for every returned endpoint.
func (m *Manager) GetEndpointInfo(ctx context.Context, discoveryURI string) ([]EndpointDescription, error) {
	endpoints, err := m.discoverer.GetEndpoints(ctx, discoveryURI)
	if err != nil {
		return nil, err
	}
	for _, ep := range endpoints {
		if m.endpointFoundCb != nil {
			m.endpointFoundCb(ep)
		}
		if m.autoConnect {
			if _, err := m.Connect(ep.EndpointURL); err != nil {
				continue
			}
		}
	}
	return endpoints, nil
}

// Connect returns the existing session for endpointURI, or creates and
// registers a new Idle one.
func (m *Manager) Connect(endpointURI string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[endpointURI]; ok {
		return s, nil
	}
	s := session.New(endpointURI, m.requestTimeout, m.maxContinuations)
	m.sessions[endpointURI] = s
	return s, nil
}

// Session looks up an existing session by endpoint URI.
func (m *Manager) Session(endpointURI string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[endpointURI]
	if !ok {
		return nil, uaerrors.New(uaerrors.BadInvalidArgument, "no session for endpoint "+endpointURI)
	}
	return s, nil
}

// Disconnect tears down and forgets the session for endpointURI.
func (m *Manager) Disconnect(endpointURI string) {
	m.mu.Lock()
	s, ok := m.sessions[endpointURI]
	if ok {
		delete(m.sessions, endpointURI)
	}
	m.mu.Unlock()
	if ok {
		s.Disconnect()
	}
}

// All returns every currently tracked session.
func (m *Manager) All() []*session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*session.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}
