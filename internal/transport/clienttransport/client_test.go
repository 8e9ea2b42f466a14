package clienttransport

import (
	"testing"

	gopcua_ua "github.com/gopcua/opcua/ua"
	"github.com/stretchr/testify/assert"
)

func TestSelectEndpointPrefersSecurityModeNone(t *testing.T) {
	endpoints := []*gopcua_ua.EndpointDescription{
		{EndpointURL: "opc.tcp://a:4840", SecurityMode: gopcua_ua.MessageSecurityModeSignAndEncrypt},
		{EndpointURL: "opc.tcp://b:4840", SecurityMode: gopcua_ua.MessageSecurityModeNone},
		{EndpointURL: "opc.tcp://c:4840", SecurityMode: gopcua_ua.MessageSecurityModeSign},
	}

	got := selectEndpoint(endpoints)
	assert.Equal(t, "opc.tcp://b:4840", got.EndpointURL)
}

func TestSelectEndpointFallsBackToFirstWhenNoneAvailable(t *testing.T) {
	endpoints := []*gopcua_ua.EndpointDescription{
		{EndpointURL: "opc.tcp://a:4840", SecurityMode: gopcua_ua.MessageSecurityModeSign},
		{EndpointURL: "opc.tcp://b:4840", SecurityMode: gopcua_ua.MessageSecurityModeSignAndEncrypt},
	}

	got := selectEndpoint(endpoints)
	assert.Equal(t, "opc.tcp://a:4840", got.EndpointURL)
}

func TestSelectEndpointReturnsNilForEmptyList(t *testing.T) {
	assert.Nil(t, selectEndpoint(nil))
}

func TestNewDefaultsConnectionTimeout(t *testing.T) {
	tr := New(Options{})
	assert.Equal(t, int64(10_000_000_000), tr.opts.ConnectionTimeout.Nanoseconds())
}

func TestDisconnectIsNoopWithoutConnect(t *testing.T) {
	tr := New(Options{})
	assert.NoError(t, tr.Disconnect(nil))
}
