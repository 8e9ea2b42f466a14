package sessionmgr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDiscoverer struct {
	apps      []ApplicationConfig
	endpoints []EndpointDescription
}

func (f *fakeDiscoverer) FindServers(ctx context.Context, discoveryURI string) ([]ApplicationConfig, error) {
	return f.apps, nil
}

func (f *fakeDiscoverer) GetEndpoints(ctx context.Context, discoveryURI string) ([]EndpointDescription, error) {
	return f.endpoints, nil
}

func TestFindServersInvokesDeviceFoundCallback(t *testing.T) {
	var found []ApplicationConfig
	disc := &fakeDiscoverer{apps: []ApplicationConfig{{ApplicationURI: "urn:app1", ApplicationType: ApplicationServer}}}
	m := New(disc, Options{DeviceFoundCb: func(a ApplicationConfig) { found = append(found, a) }})

	apps, err := m.FindServers(context.Background(), "opc.tcp://discovery:4840")
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.Len(t, found, 1)
	assert.Equal(t, "urn:app1", found[0].ApplicationURI)
}

func TestGetEndpointInfoDoesNotAutoConnectByDefault(t *testing.T) {
	disc := &fakeDiscoverer{endpoints: []EndpointDescription{{EndpointURL: "opc.tcp://server:4840"}}}
	m := New(disc, Options{})

	_, err := m.GetEndpointInfo(context.Background(), "opc.tcp://discovery:4840")
	require.NoError(t, err)
	_, err = m.Session("opc.tcp://server:4840")
	assert.Error(t, err)
}

func TestGetEndpointInfoAutoConnectsWhenEnabled(t *testing.T) {
	disc := &fakeDiscoverer{endpoints: []EndpointDescription{{EndpointURL: "opc.tcp://server:4840"}}}
	m := New(disc, Options{AutoConnect: true, RequestTimeout: time.Second, MaxContinuations: 10})

	_, err := m.GetEndpointInfo(context.Background(), "opc.tcp://discovery:4840")
	require.NoError(t, err)
	s, err := m.Session("opc.tcp://server:4840")
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestConnectReturnsSameSessionOnRepeatedCalls(t *testing.T) {
	m := New(&fakeDiscoverer{}, Options{})
	s1, err := m.Connect("opc.tcp://server:4840")
	require.NoError(t, err)
	s2, err := m.Connect("opc.tcp://server:4840")
	require.NoError(t, err)
	assert.Same(t, s1, s2)
}

func TestDisconnectRemovesSessionFromManager(t *testing.T) {
	m := New(&fakeDiscoverer{}, Options{})
	_, err := m.Connect("opc.tcp://server:4840")
	require.NoError(t, err)
	m.Disconnect("opc.tcp://server:4840")
	_, err = m.Session("opc.tcp://server:4840")
	assert.Error(t, err)
}
