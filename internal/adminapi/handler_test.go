package adminapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edgeiiot/opcua-runtime/internal/sessionmgr"
	"github.com/edgeiiot/opcua-runtime/internal/subscription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleStatusReportsSubscriptionsAndSessions(t *testing.T) {
	subs := subscription.NewStore()
	_, err := subs.Create(subscription.Parameters{
		PublishingInterval: time.Second, LifetimeCount: 10, MaxKeepAliveCount: 5,
		MaxNotificationsPerPub: 10, Priority: 3,
	})
	require.NoError(t, err)

	mgr := sessionmgr.New(nil, sessionmgr.Options{RequestTimeout: time.Minute, MaxContinuations: 10})
	_, err = mgr.Connect("opc.tcp://server:4840")
	require.NoError(t, err)

	h := NewHandler("edge-opcuad", subs, mgr)
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "edge-opcuad", resp.ApplicationName)
	require.Len(t, resp.Subscriptions, 1)
	assert.Equal(t, "Active", resp.Subscriptions[0].State)
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, "opc.tcp://server:4840", resp.Sessions[0].EndpointURI)
}

func TestHandleStatusRejectsNonGet(t *testing.T) {
	h := NewHandler("edge-opcuad", subscription.NewStore(), nil)
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, httptest.NewRequest(http.MethodPost, "/api/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
