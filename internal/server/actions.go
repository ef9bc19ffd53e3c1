package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tatianab/orb-cult/internal/engine"
	"github.com/tatianab/orb-cult/internal/storage"
)

var validate = validator.New()

// ActionRequest is the wire form of an engine action.
type ActionRequest struct {
	ID       string `json:"id,omitempty" validate:"omitempty,max=128"`
	Kind     string `json:"kind" validate:"required,oneof=profile ritual meditate ask mention prophecy server adventure.start adventure.choose adventure.abandon sacrifice"`
	ActorID  string `json:"actorId" validate:"required,max=64"`
	TargetID string `json:"targetId,omitempty" validate:"omitempty,max=64"`
	ServerID string `json:"serverId,omitempty" validate:"omitempty,max=64"`
	Payload  string `json:"payload,omitempty" validate:"max=2000"`
}

// Action validates the request and converts it. A missing ID is filled
// with a fresh one.
func (r ActionRequest) Action() (engine.Action, error) {
	if err := validate.Struct(r); err != nil {
		return engine.Action{}, err
	}
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	return engine.Action{
		ID:       id,
		Kind:     engine.Kind(r.Kind),
		ActorID:  r.ActorID,
		TargetID: r.TargetID,
		ServerID: r.ServerID,
		Payload:  r.Payload,
	}, nil
}

// errorStatus maps an engine error to an HTTP status.
func errorStatus(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs), errors.Is(err, engine.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleAction(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}
	a, err := req.Action()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.engine.Handle(c.Request.Context(), a)
	if err != nil {
		s.respondError(c, a, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleProfile(c *gin.Context) {
	id := c.Param("id")
	if err := validate.Var(id, "required,max=64"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id: " + err.Error()})
		return
	}
	a := engine.Action{Kind: engine.KindProfile, ActorID: id}
	res, err := s.engine.Handle(c.Request.Context(), a)
	if err != nil {
		s.respondError(c, a, err)
		return
	}
	c.JSON(http.StatusOK, res.Profile)
}

func (s *Server) handleStory(c *gin.Context) {
	g := s.engine.Graph()
	c.JSON(http.StatusOK, gin.H{
		"title":    g.Title,
		"entries":  g.Entries,
		"nodes":    len(g.Nodes),
		"dangling": g.Dangling(),
	})
}

func (s *Server) respondError(c *gin.Context, a engine.Action, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("action failed", "kind", a.Kind, "actor", a.ActorID, "error", err)
		c.JSON(status, gin.H{"error": "the orb is unreachable, try again"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
