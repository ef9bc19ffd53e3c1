package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tatianab/orb-cult/internal/engine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Reply is the frame sent back for each action a websocket client sends.
type Reply struct {
	ActionID string         `json:"actionId,omitempty"`
	Result   *engine.Result `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// RateLimited is the reply error for actions over the connection's rate.
const RateLimited = "too many actions, the orb needs a moment"

func (s *Server) handleWebSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	limiter := rate.NewLimiter(s.limit, s.burst)
	ctx := c.Request.Context()
	s.log.Info("websocket client connected", "remote", c.ClientIP())

	for {
		var req ActionRequest
		if err := ws.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("websocket read failed", "error", err)
			}
			return
		}
		if err := ws.WriteJSON(s.reply(ctx, limiter, req)); err != nil {
			s.log.Warn("websocket write failed", "error", err)
			return
		}
	}
}

func (s *Server) reply(ctx context.Context, limiter *rate.Limiter, req ActionRequest) Reply {
	a, err := req.Action()
	if err != nil {
		return Reply{ActionID: req.ID, Error: err.Error()}
	}
	if !limiter.Allow() {
		return Reply{ActionID: a.ID, Error: RateLimited}
	}
	res, err := s.engine.Handle(ctx, a)
	if err != nil {
		if errorStatus(err) >= http.StatusInternalServerError {
			s.log.Error("action failed", "kind", a.Kind, "actor", a.ActorID, "error", err)
			return Reply{ActionID: a.ID, Error: "the orb is unreachable, try again"}
		}
		return Reply{ActionID: a.ID, Error: err.Error()}
	}
	return Reply{ActionID: a.ID, Result: &res}
}
