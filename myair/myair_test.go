package myair_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"advantageair2mqtt/aa"
	"advantageair2mqtt/myair"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const systemDataJSON = `{
	"aircons": {
		"ac1": {
			"info": {
				"name": "AC One",
				"state": "on",
				"mode": "vent",
				"fan": "autoAA",
				"setTemp": 24,
				"myAutoModeEnabled": true
			},
			"zones": {
				"z01": {
					"name": "Living",
					"number": 1,
					"state": "open",
					"type": 1,
					"setTemp": 24,
					"measuredTemp": 25.5,
					"value": 100,
					"rssi": 40
				}
			}
		}
	},
	"system": {
		"rid": "uniqueid",
		"name": "testsystem",
		"myAppRev": "10.20",
		"tspModel": "AA108",
		"needsUpdate": false
	}
}`

func newTestClient(t *testing.T, handler http.Handler) (*myair.Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return myair.New(&myair.Config{
		Host:    host,
		Port:    port,
		Timeout: time.Second,
		Retries: 1,
	}), srv
}

func TestGetSystemData(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getSystemData", r.URL.Path)
		w.Write([]byte(systemDataJSON))
	}))

	data, err := client.GetSystemData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "uniqueid", data.System.RID)
	ac := data.Aircons["ac1"]
	assert.Equal(t, "vent", ac.Info.Mode)
	assert.True(t, ac.Info.MyAutoModeEnabled)
	assert.Equal(t, 25.5, ac.Zones["z01"].MeasuredTemp)
	assert.Equal(t, 1, ac.Zones["z01"].Type)
}

func TestGetSystemDataRetries(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(systemDataJSON))
	}))

	data, err := client.GetSystemData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "testsystem", data.System.Name)
}

func TestSetAircon(t *testing.T) {
	var gotJSON string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/setAircon", r.URL.Path)
		gotJSON = r.URL.Query().Get("json")
		w.Write([]byte(`{"ack":true}`))
	}))

	state := "on"
	mode := "heat"
	err := client.SetAircon(context.Background(), aa.Request{
		"ac1": {Info: &aa.InfoChange{State: &state, Mode: &mode}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ac1":{"info":{"state":"on","mode":"heat"}}}`, gotJSON)
}

func TestSetAirconRefused(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"ack":false,"reason":"setTemp out of range"}`))
	}))

	temp := 50.0
	err := client.SetAircon(context.Background(), aa.Request{
		"ac1": {Info: &aa.InfoChange{SetTemp: &temp}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, myair.ErrNotAcknowledged))
	assert.Contains(t, err.Error(), "setTemp out of range")
	// a refusal is final, the client must not hammer the controller
	assert.Equal(t, 1, calls)
}
