// Package adventure implements the branching narrative: a static graph of
// nodes loaded from data, and the per-user session state machine that walks it.
//
// The graph is acyclic in intent only. Traversal never assumes it, so
// revisits and self-loops are legal.
package adventure

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed story.yaml
var defaultStory []byte

// NodeID identifies a node in the graph.
type NodeID string

// Choice is an outgoing edge offered to the player.
type Choice struct {
	ID    NodeID `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// Node is one beat of the story.
type Node struct {
	ID       NodeID   `yaml:"-" json:"id"`
	Text     string   `yaml:"text" json:"text"`
	Sanity   int      `yaml:"sanity,omitempty" json:"sanity,omitempty"`
	Favor    int      `yaml:"favor,omitempty" json:"favor,omitempty"`
	Choices  []Choice `yaml:"choices,omitempty" json:"choices,omitempty"`
	Terminal bool     `yaml:"terminal,omitempty" json:"terminal,omitempty"`

	// Achievement is granted once when a terminal node is reached.
	Achievement string `yaml:"achievement,omitempty" json:"achievement,omitempty"`
	Reward      int    `yaml:"reward,omitempty" json:"reward,omitempty"`
}

// Graph is the complete story.
type Graph struct {
	Title   string
	Entries []NodeID
	Nodes   map[NodeID]*Node
}

type graphFile struct {
	Title   string           `yaml:"title"`
	Entries []NodeID         `yaml:"entries"`
	Nodes   map[NodeID]*Node `yaml:"nodes"`
}

var (
	// ErrNoEntries is returned when a graph declares no starting nodes.
	ErrNoEntries = errors.New("adventure: graph has no entry nodes")
	// ErrMissingEntry is returned when an entry names a node that does not exist.
	ErrMissingEntry = errors.New("adventure: entry node not found")
	// ErrDeadEnd is returned for a non-terminal node with no choices.
	ErrDeadEnd = errors.New("adventure: non-terminal node has no choices")
)

// Default parses the embedded story.
func Default() (*Graph, error) {
	return Parse(defaultStory)
}

// LoadFile parses a story from a YAML file on disk.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read story %q: %w", path, err)
	}
	return Parse(data)
}

// Parse builds and validates a graph from YAML.
func Parse(data []byte) (*Graph, error) {
	var f graphFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse story: %w", err)
	}
	g := &Graph{Title: f.Title, Entries: f.Entries, Nodes: make(map[NodeID]*Node, len(f.Nodes))}
	for id, n := range f.Nodes {
		if n == nil {
			n = &Node{}
		}
		n.ID = id
		g.Nodes[id] = n
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks the structural rules of a graph. Choices pointing at
// missing nodes are allowed here; see Dangling.
func (g *Graph) Validate() error {
	if len(g.Entries) == 0 {
		return ErrNoEntries
	}
	for _, id := range g.Entries {
		if _, ok := g.Nodes[id]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingEntry, id)
		}
	}
	for id, n := range g.Nodes {
		if !n.Terminal && len(n.Choices) == 0 {
			return fmt.Errorf("%w: %s", ErrDeadEnd, id)
		}
	}
	return nil
}

// Node returns a node by ID, or nil if not found.
func (g *Graph) Node(id NodeID) *Node {
	return g.Nodes[id]
}

// Dangling lists choice targets that name no node, sorted.
func (g *Graph) Dangling() []NodeID {
	var out []NodeID
	for _, n := range g.Nodes {
		for _, c := range n.Choices {
			if _, ok := g.Nodes[c.ID]; !ok && !slices.Contains(out, c.ID) {
				out = append(out, c.ID)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
