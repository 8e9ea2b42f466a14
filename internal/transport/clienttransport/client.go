// Package clienttransport wraps github.com/gopcua/opcua's client.Client,
// the opaque wire codec on the client side: endpoint discovery, security
// policy selection, then connection with a timeout.
package clienttransport

import (
	"context"
	"fmt"
	"time"

	"github.com/gopcua/opcua"
	gopcua_ua "github.com/gopcua/opcua/ua"

	"github.com/edgeiiot/opcua-runtime/internal/sessionmgr"
)

// Options configures a client transport connection.
type Options struct {
	RequestTimeout    time.Duration
	ConnectionTimeout time.Duration
}

// Transport implements sessionmgr.Discoverer and owns the underlying
// gopcua client once connected.
type Transport struct {
	opts   Options
	client *opcua.Client
}

// New constructs a Transport with the given call timeouts.
func New(opts Options) *Transport {
	if opts.ConnectionTimeout <= 0 {
		opts.ConnectionTimeout = 10 * time.Second
	}
	return &Transport{opts: opts}
}

// FindServers implements sessionmgr.Discoverer via the OPC UA Discovery
// service. gopcua does not expose FindServers as a package-level call
// distinct from GetEndpoints for anonymous discovery, so this adapts
// the discovered endpoints into ApplicationConfig entries, one per
// distinct server application URI.
func (t *Transport) FindServers(ctx context.Context, discoveryURI string) ([]sessionmgr.ApplicationConfig, error) {
	endpoints, err := opcua.GetEndpoints(ctx, discoveryURI)
	if err != nil {
		return nil, fmt.Errorf("find servers: %w", err)
	}
	seen := make(map[string]bool)
	var apps []sessionmgr.ApplicationConfig
	for _, ep := range endpoints {
		if ep.Server == nil || seen[ep.Server.ApplicationURI] {
			continue
		}
		seen[ep.Server.ApplicationURI] = true
		apps = append(apps, sessionmgr.ApplicationConfig{
			ApplicationURI:   ep.Server.ApplicationURI,
			ProductURI:       ep.Server.ProductURI,
			ApplicationName:  ep.Server.ApplicationName.Text,
			ApplicationType:  sessionmgr.ApplicationType(1) << ep.Server.ApplicationType,
			GatewayServerURI: ep.Server.GatewayServerURI,
			DiscoveryURLs:    ep.Server.DiscoveryUrls,
		})
	}
	return apps, nil
}

// GetEndpoints implements sessionmgr.Discoverer.
func (t *Transport) GetEndpoints(ctx context.Context, discoveryURI string) ([]sessionmgr.EndpointDescription, error) {
	endpoints, err := opcua.GetEndpoints(ctx, discoveryURI)
	if err != nil {
		return nil, fmt.Errorf("get endpoints: %w", err)
	}
	out := make([]sessionmgr.EndpointDescription, 0, len(endpoints))
	for _, ep := range endpoints {
		out = append(out, sessionmgr.EndpointDescription{
			EndpointURL:    ep.EndpointURL,
			SecurityMode:   ep.SecurityMode.String(),
			SecurityPolicy: ep.SecurityPolicyURI,
		})
	}
	return out, nil
}

// Connect establishes a secure channel and an anonymous session against
// endpointURI, on the endpoint chosen by selectEndpoint: the first
// SecurityModeNone endpoint, or else the first endpoint listed.
func (t *Transport) Connect(ctx context.Context, endpointURI string) error {
	endpoints, err := opcua.GetEndpoints(ctx, endpointURI)
	if err != nil {
		return fmt.Errorf("failed to get endpoints: %w", err)
	}
	if len(endpoints) == 0 {
		return fmt.Errorf("no endpoints available at %s", endpointURI)
	}

	ep := selectEndpoint(endpoints)
	if ep == nil {
		return fmt.Errorf("no suitable endpoint found for security settings")
	}

	opts := []opcua.Option{
		opcua.SecurityFromEndpoint(ep, gopcua_ua.UserTokenTypeAnonymous),
		opcua.AuthAnonymous(),
		opcua.RequestTimeout(t.opts.RequestTimeout),
	}

	client, err := opcua.NewClient(endpointURI, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OPC UA client: %w", err)
	}
	t.client = client

	connectCtx, cancel := context.WithTimeout(ctx, t.opts.ConnectionTimeout)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	return nil
}

// Disconnect closes the underlying client session and secure channel.
func (t *Transport) Disconnect(ctx context.Context) error {
	if t.client == nil {
		return nil
	}
	return t.client.Close(ctx)
}

// selectEndpoint prefers SecurityModeNone for the anonymous/no-TLS
// bootstrap path; a production deployment would also weigh
// SecurityPolicyURI against the application's configured policy.
func selectEndpoint(endpoints []*gopcua_ua.EndpointDescription) *gopcua_ua.EndpointDescription {
	for _, ep := range endpoints {
		if ep.SecurityMode == gopcua_ua.MessageSecurityModeNone {
			return ep
		}
	}
	if len(endpoints) > 0 {
		return endpoints[0]
	}
	return nil
}
