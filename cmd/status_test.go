package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescout/farescout/internal/monitoring"
)

func TestStatusHealthz(t *testing.T) {
	srv := httptest.NewServer(newStatusRouter(monitoring.New()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestStatusStats(t *testing.T) {
	col := monitoring.New()
	col.EventSeen()
	col.OfferEmitted()

	srv := httptest.NewServer(newStatusRouter(col))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	var s monitoring.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	assert.Equal(t, uint64(1), s.EventsSeen)
	assert.Equal(t, uint64(1), s.OffersEmitted)
}
