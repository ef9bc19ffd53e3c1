package adventure

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tatianab/orb-cult/internal/achievements"
	"github.com/tatianab/orb-cult/internal/chance"
	"github.com/tatianab/orb-cult/internal/models"
	"github.com/tatianab/orb-cult/internal/rules"
)

var (
	// ErrSessionActive is returned when starting while a session is live.
	ErrSessionActive = errors.New("adventure: already in progress")
	// ErrNoSession is returned when choosing without a live session.
	ErrNoSession = errors.New("adventure: no active session")
	// ErrUnknownNode is returned when a choice names a node absent from the
	// graph. The session that produced it should be discarded.
	ErrUnknownNode = errors.New("adventure: node not found")
)

// Engine walks a graph on behalf of one user at a time. It holds no
// per-user state; sessions are passed in and handed back.
type Engine struct {
	graph *Graph
	eval  *achievements.Evaluator
}

// NewEngine returns an engine over g.
func NewEngine(g *Graph, eval *achievements.Evaluator) *Engine {
	if eval == nil {
		eval = achievements.NewEvaluator(nil)
	}
	return &Engine{graph: g, eval: eval}
}

// Graph returns the graph the engine walks.
func (e *Engine) Graph() *Graph {
	return e.graph
}

// Step is the result of a choice.
type Step struct {
	Node      *Node
	Completed bool
	Elapsed   time.Duration
	// Session is the updated session, or nil once the adventure completes.
	Session  *models.AdventureSession
	Unlocked []achievements.Unlock
}

// Start opens a new session at a random entry node. It refuses, without
// touching anything, if sess is already live.
func (e *Engine) Start(userID string, sess *models.AdventureSession, r chance.Roller, now time.Time) (*models.AdventureSession, *Node, error) {
	if sess != nil {
		return nil, nil, ErrSessionActive
	}
	entry := e.graph.Entries[r.Intn(len(e.graph.Entries))]
	node := e.graph.Node(entry)
	if node == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownNode, entry)
	}
	return &models.AdventureSession{
		Version:   models.SchemaVersion,
		ID:        uuid.NewString(),
		UserID:    userID,
		NodeID:    string(entry),
		StartedAt: now,
	}, node, nil
}

// Choose moves sess to target. Any node in the graph is a legal target,
// declared child or not. The node's effects are committed to p immediately.
func (e *Engine) Choose(p *models.CultistProfile, sess *models.AdventureSession, target NodeID, now time.Time) (Step, error) {
	if sess == nil {
		return Step{}, ErrNoSession
	}
	node := e.graph.Node(target)
	if node == nil {
		return Step{}, fmt.Errorf("%w: %s", ErrUnknownNode, target)
	}

	sanityBefore, favorBefore := p.Sanity, p.Favor
	rules.AdjustSanity(p, node.Sanity)
	rules.AdjustFavor(p, node.Favor)

	next := *sess
	next.SanityDelta += p.Sanity - sanityBefore
	next.FavorDelta += p.Favor - favorBefore
	next.Steps++

	unlocked := e.eval.Evaluate(p)

	if node.Terminal {
		if node.Achievement != "" && achievements.Grant(p, node.Achievement, node.Reward) {
			unlocked = append(unlocked, achievements.Unlock{Name: node.Achievement, Reward: node.Reward})
			unlocked = append(unlocked, e.eval.Evaluate(p)...)
		}
		return Step{
			Node:      node,
			Completed: true,
			Elapsed:   now.Sub(sess.StartedAt),
			Unlocked:  unlocked,
		}, nil
	}

	next.NodeID = string(target)
	return Step{Node: node, Session: &next, Unlocked: unlocked}, nil
}

// Current returns the node sess sits on.
func (e *Engine) Current(sess *models.AdventureSession) (*Node, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	node := e.graph.Node(NodeID(sess.NodeID))
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, sess.NodeID)
	}
	return node, nil
}
