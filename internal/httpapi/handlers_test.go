package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imposterparty/imposter-backend/internal/account"
	"github.com/imposterparty/imposter-backend/internal/registry"
	"github.com/imposterparty/imposter-backend/internal/session"
	"github.com/imposterparty/imposter-backend/internal/wordbank"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := registry.New(context.Background(), registry.Config{
		Bank:  wordbank.New(),
		Store: account.NewMemoryStore(),
		Log:   zap.NewNop(),
		Grace: time.Minute,
	})
	t.Cleanup(reg.Shutdown)
	srv := httptest.NewServer(SetupRoutes(reg, account.NewMemoryStore(), zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestCreateJoinState(t *testing.T) {
	srv := newTestServer(t)

	resp, created := postJSON(t, srv.URL+"/api/game/create", map[string]any{"playerName": "Host"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	code, _ := created["code"].(string)
	require.Len(t, code, 6)
	assert.Equal(t, true, created["isHost"])

	resp, joined := postJSON(t, srv.URL+"/api/game/join", map[string]any{"playerName": "Alice", "code": code})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, joined["isHost"])
	assert.Len(t, joined["players"], 2)

	stateResp, err := http.Get(srv.URL + "/api/game/state?code=" + code + "&playerName=Alice")
	require.NoError(t, err)
	defer stateResp.Body.Close()
	require.Equal(t, http.StatusOK, stateResp.StatusCode)

	var view session.StateView
	require.NoError(t, json.NewDecoder(stateResp.Body).Decode(&view))
	assert.Equal(t, code, view.Code)
	assert.Equal(t, "Host", view.HostName)
	assert.Equal(t, session.PhaseLobby, view.Phase)
}

func TestUnknownRoomIs404(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/game/join", map[string]any{"playerName": "Alice", "code": "NOSUCH"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, registry.ErrRoomNotFound.Error(), body["error"])
}

func TestGuardErrorsMapToStatusCodes(t *testing.T) {
	srv := newTestServer(t)

	_, created := postJSON(t, srv.URL+"/api/game/create", map[string]any{"playerName": "Host"})
	code := created["code"].(string)
	_, _ = postJSON(t, srv.URL+"/api/game/join", map[string]any{"playerName": "Alice", "code": code})

	resp, _ := postJSON(t, srv.URL+"/api/game/start", map[string]any{"playerName": "Alice", "code": code})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "a non-host start is refused")

	resp, _ = postJSON(t, srv.URL+"/api/game/start", map[string]any{"playerName": "Host", "code": code})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "two players are too few")

	resp, _ = postJSON(t, srv.URL+"/api/game/join", map[string]any{"playerName": "alice", "code": code})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "names collide case-insensitively")
}

func TestAccountEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, created := postJSON(t, srv.URL+"/api/users", map[string]any{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := created["id"].(string)
	require.NotEmpty(t, id)

	resp, _ = postJSON(t, srv.URL+"/api/auth/sign-in", map[string]any{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = postJSON(t, srv.URL+"/api/auth/sign-in", map[string]any{"username": "alice", "password": "pw"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	statsResp, err := http.Get(srv.URL + "/api/users/" + id + "/stats")
	require.NoError(t, err)
	defer statsResp.Body.Close()
	require.Equal(t, http.StatusOK, statsResp.StatusCode)

	var stats account.Stats
	require.NoError(t, json.NewDecoder(statsResp.Body).Decode(&stats))
	assert.Equal(t, 0, stats.Games)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
