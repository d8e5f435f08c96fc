package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirebattle-server/internal/core"
	"github.com/vovakirdan/wirebattle-server/internal/store"
)

func serve(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestHealth(t *testing.T) {
	router := NewRouter(&fakeBattle{}, createTestStore(t), testConfig(), disabledLogger())

	resp := serve(t, router, "/health")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", resp.Body.String())
}

func TestStats(t *testing.T) {
	st := createTestStore(t)
	now := time.Now()
	seedMatch(t, st, "m1", "carol", "bob", store.OutcomeDefeat, now)
	seedMatch(t, st, "m2", "bob", "dave", store.OutcomeForfeit, now)

	hub := &fakeBattle{stats: core.Stats{Online: 5, Named: 4, Idle: 2, InMatch: 2, Matches: 2}}
	router := NewRouter(hub, st, testConfig(), disabledLogger())

	resp := serve(t, router, "/api/stats")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var got StatsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, StatsResponse{
		Online:          5,
		Named:           4,
		Idle:            2,
		InMatch:         2,
		MatchesFinished: 2,
		MatchesRecorded: 2,
		Forfeits:        1,
	}, got)
}

func TestRecentMatches(t *testing.T) {
	st := createTestStore(t)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	seedMatch(t, st, "m1", "carol", "bob", store.OutcomeDefeat, base)
	seedMatch(t, st, "m2", "bob", "dave", store.OutcomeForfeit, base.Add(time.Minute))
	seedMatch(t, st, "m3", "dave", "carol", store.OutcomeDefeat, base.Add(2*time.Minute))

	router := NewRouter(&fakeBattle{}, st, testConfig(), disabledLogger())

	resp := serve(t, router, "/api/matches?limit=2")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var got []MatchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "m3", got[0].ID)
	assert.Equal(t, "m2", got[1].ID)
	assert.Equal(t, "forfeit", got[1].Outcome)

	resp = serve(t, router, "/api/matches")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Len(t, got, 3)
}

func TestRecentMatchesRejectsBadLimit(t *testing.T) {
	router := NewRouter(&fakeBattle{}, createTestStore(t), testConfig(), disabledLogger())

	for _, q := range []string{"limit=0", "limit=-3", "limit=ten"} {
		resp := serve(t, router, "/api/matches?"+q)
		assert.Equal(t, http.StatusBadRequest, resp.Code, q)
	}
}

func TestRecentMatchesEmptyLedger(t *testing.T) {
	router := NewRouter(&fakeBattle{}, createTestStore(t), testConfig(), disabledLogger())

	resp := serve(t, router, "/api/matches")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, "[]", resp.Body.String())
}

func TestPlayer(t *testing.T) {
	st := createTestStore(t)
	now := time.Now()
	seedMatch(t, st, "m1", "carol", "bob", store.OutcomeDefeat, now)
	seedMatch(t, st, "m2", "bob", "carol", store.OutcomeForfeit, now)
	seedMatch(t, st, "m3", "carol", "dave", store.OutcomeDefeat, now)

	router := NewRouter(&fakeBattle{}, st, testConfig(), disabledLogger())

	resp := serve(t, router, "/api/players/carol")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var got PlayerResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, PlayerResponse{Name: "carol", Wins: 2, Losses: 1, Forfeits: 1}, got)

	resp = serve(t, router, "/api/players/nobody")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestWebSocketRouteDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.WebSocket = false
	router := NewRouter(&fakeBattle{}, createTestStore(t), cfg, disabledLogger())

	resp := serve(t, router, "/ws")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
