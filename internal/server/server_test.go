package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/orb-cult/internal/chance"
	"github.com/tatianab/orb-cult/internal/engine"
	"github.com/tatianab/orb-cult/internal/storage"
	"github.com/tatianab/orb-cult/internal/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	store := storage.New(memory.New(), nil)
	eng, err := engine.New(store, engine.Options{Roller: chance.New(1), DedupWindow: 32})
	require.NoError(t, err)
	return New(eng, opts)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestKeepAlive(t *testing.T) {
	s := newTestServer(t, Options{})

	w := do(t, s, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, KeepAlive, w.Body.String())

	w = do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})
	do(t, s, http.MethodPost, "/v1/actions", ActionRequest{Kind: "ritual", ActorID: "m1"})

	w := do(t, s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cult_actions_total")
}

func TestPostAction(t *testing.T) {
	s := newTestServer(t, Options{})

	w := do(t, s, http.MethodPost, "/v1/actions", ActionRequest{Kind: "ritual", ActorID: "u1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res engine.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, engine.StatusOK, res.Status)
	assert.NotEmpty(t, res.ActionID, "expected a generated action id")
	require.NotNil(t, res.Artifact)
	assert.Len(t, res.Profile.Artifacts, 1)
}

func TestPostActionDuplicate(t *testing.T) {
	s := newTestServer(t, Options{})
	req := ActionRequest{ID: "same", Kind: "meditate", ActorID: "u1"}

	do(t, s, http.MethodPost, "/v1/actions", req)
	w := do(t, s, http.MethodPost, "/v1/actions", req)
	require.Equal(t, http.StatusOK, w.Code)

	var res engine.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, engine.StatusDuplicate, res.Status)
}

func TestPostActionRejectsBadRequests(t *testing.T) {
	s := newTestServer(t, Options{})
	tests := []struct {
		name string
		body any
	}{
		{"missing actor", ActionRequest{Kind: "ritual"}},
		{"unknown kind", ActionRequest{Kind: "dance", ActorID: "u1"}},
		{"mention without server", ActionRequest{Kind: "mention", ActorID: "u1"}},
		{"oversized actor", ActionRequest{Kind: "ritual", ActorID: strings.Repeat("x", 65)}},
		{"not json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/v1/actions", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestGetProfile(t *testing.T) {
	s := newTestServer(t, Options{})

	w := do(t, s, http.MethodGet, "/v1/profiles/newcomer", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var p engine.ProfileView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "newcomer", p.ID)
	assert.Equal(t, 100, p.Sanity)
	assert.Equal(t, 0, p.Favor)
}

func TestGetProfileRejectsOversizedID(t *testing.T) {
	backend := memory.New()
	eng, err := engine.New(storage.New(backend, nil), engine.Options{Roller: chance.New(1)})
	require.NoError(t, err)
	s := New(eng, Options{})
	id := strings.Repeat("x", 65)

	w := do(t, s, http.MethodGet, "/v1/profiles/"+id, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "invalid profile id")

	_, err = backend.Load(context.Background(), storage.KeyspaceCultists, id)
	assert.ErrorIs(t, err, storage.ErrNotFound, "rejected id must not create a profile")

	w = do(t, s, http.MethodGet, "/v1/profiles/"+strings.Repeat("x", 64), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetStory(t *testing.T) {
	s := newTestServer(t, Options{})

	w := do(t, s, http.MethodGet, "/v1/story", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "entries")
}

func dial(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketActions(t *testing.T) {
	s := newTestServer(t, Options{})
	conn := dial(t, s)

	require.NoError(t, conn.WriteJSON(ActionRequest{ID: "w1", Kind: "adventure.start", ActorID: "ws-user"}))
	var reply Reply
	require.NoError(t, conn.ReadJSON(&reply))
	require.Empty(t, reply.Error)
	require.NotNil(t, reply.Result)
	assert.Equal(t, "w1", reply.ActionID)
	assert.Equal(t, engine.StatusOK, reply.Result.Status)
	require.NotEmpty(t, reply.Result.Choices)

	require.NoError(t, conn.WriteJSON(ActionRequest{Kind: "adventure.start", ActorID: "ws-user"}))
	require.NoError(t, conn.ReadJSON(&reply))
	require.NotNil(t, reply.Result)
	assert.Equal(t, engine.StatusSessionActive, reply.Result.Status)

	require.NoError(t, conn.WriteJSON(ActionRequest{Kind: "ritual"}))
	reply = Reply{}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.NotEmpty(t, reply.Error)
	assert.Nil(t, reply.Result)
}

func TestWebSocketRateLimit(t *testing.T) {
	s := newTestServer(t, Options{ActionRate: 0.001, ActionBurst: 2})
	conn := dial(t, s)

	var limited int
	for range 4 {
		require.NoError(t, conn.WriteJSON(ActionRequest{Kind: "profile", ActorID: "spammer"}))
		var reply Reply
		require.NoError(t, conn.ReadJSON(&reply))
		if reply.Error == RateLimited {
			limited++
		}
	}
	assert.Equal(t, 2, limited)
}
