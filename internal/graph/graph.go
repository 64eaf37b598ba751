// Package graph holds the application navigation graph discovered by
// exploration: an append-only sequence of nodes and edges with an
// immutable-view contract toward callers.
package graph

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActionType classifies how an edge was traversed.
type ActionType string

const (
	ActionClick      ActionType = "click"
	ActionFormSubmit ActionType = "form-submit"
	ActionNavigation ActionType = "navigation"
)

// Node is a discovered application page.
type Node struct {
	ID                 string    `json:"id"`
	URL                string    `json:"url"`
	Title              string    `json:"title"`
	ElementCount       int       `json:"elementCount"`
	DiscoveryTimestamp time.Time `json:"discoveryTimestamp"`
	DomHash            string    `json:"domHash"`
	ScreenshotPath     string    `json:"screenshotPath,omitempty"`
}

// Edge is a discovered transition between two nodes. TargetID may be
// empty while the target node has not yet been created; Graph.Complete
// requires every edge to have a non-empty TargetID.
type Edge struct {
	SourceID   string     `json:"sourceId"`
	TargetID   string     `json:"targetId"`
	ActionType ActionType `json:"actionType"`
	Selector   string     `json:"selector"`
	HTTPStatus *int       `json:"httpStatus,omitempty"`
}

// Metadata carries whole-graph bookkeeping.
type Metadata struct {
	StartURL    string     `json:"startUrl"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Graph is an owned, mutable graph with explicit Serialize for
// snapshots. Per spec §9 this replaces copy-on-append persistence
// while preserving the observable contract: callers never see a
// partially-built Graph value, only snapshots taken between
// operations.
type Graph struct {
	nodes    []Node
	edges    []Edge
	nodeIdx  map[string]int
	metadata Metadata
}

// New starts a graph rooted at startURL.
func New(startURL string, startedAt time.Time) *Graph {
	return &Graph{
		nodeIdx:  make(map[string]int),
		metadata: Metadata{StartURL: startURL, StartedAt: startedAt},
	}
}

// AddNode appends node to the graph.
func (g *Graph) AddNode(node Node) {
	g.nodeIdx[node.ID] = len(g.nodes)
	g.nodes = append(g.nodes, node)
}

// AddEdge appends edge. It returns an error if SourceID does not refer
// to an existing node, preserving the graph invariant unconditionally.
func (g *Graph) AddEdge(edge Edge) error {
	if _, ok := g.nodeIdx[edge.SourceID]; !ok {
		return fmt.Errorf("addEdge: source node %q does not exist", edge.SourceID)
	}
	g.edges = append(g.edges, edge)
	return nil
}

// GetNode returns the node with id, or ok=false.
func (g *Graph) GetNode(id string) (Node, bool) {
	idx, ok := g.nodeIdx[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[idx], true
}

// GetEdgesFrom returns every edge whose SourceID is id, in insertion order.
func (g *Graph) GetEdgesFrom(id string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.SourceID == id {
			out = append(out, e)
		}
	}
	return out
}

// Nodes returns a copy of the node list.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Edges returns a copy of the edge list.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Metadata returns the graph's metadata.
func (g *Graph) Metadata() Metadata {
	return g.metadata
}

// Complete marks the graph finished, setting CompletedAt. It is an
// error to complete a graph that still has an edge with an empty
// TargetID.
func (g *Graph) Complete(completedAt time.Time) error {
	for _, e := range g.edges {
		if e.TargetID == "" {
			return fmt.Errorf("complete: edge from %q has unresolved target", e.SourceID)
		}
	}
	g.metadata.CompletedAt = &completedAt
	return nil
}

// FindPaths enumerates every acyclic path from "from" to "to" via
// breadth-first traversal that forbids revisiting a node within a
// single path. It returns an empty slice when no path exists. Callers
// must bound the graph size themselves; enumeration can be
// exponential for densely connected graphs.
func (g *Graph) FindPaths(from, to string) [][]Edge {
	if from == to {
		return nil
	}

	type partial struct {
		node    string
		visited map[string]bool
		path    []Edge
	}

	var results [][]Edge
	queue := []partial{{node: from, visited: map[string]bool{from: true}}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, e := range g.GetEdgesFrom(cur.node) {
			if e.TargetID == "" || cur.visited[e.TargetID] {
				continue
			}
			nextPath := append(append([]Edge(nil), cur.path...), e)
			if e.TargetID == to {
				results = append(results, nextPath)
				continue
			}
			nextVisited := make(map[string]bool, len(cur.visited)+1)
			for k := range cur.visited {
				nextVisited[k] = true
			}
			nextVisited[e.TargetID] = true
			queue = append(queue, partial{node: e.TargetID, visited: nextVisited, path: nextPath})
		}
	}
	return results
}

// snapshot is the JSON wire form of a Graph.
type snapshot struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Metadata Metadata `json:"metadata"`
}

// Serialize renders the graph as JSON. Every field round-trips through
// Deserialize.
func (g *Graph) Serialize() (string, error) {
	data, err := json.Marshal(snapshot{Nodes: g.nodes, Edges: g.edges, Metadata: g.metadata})
	if err != nil {
		return "", fmt.Errorf("serialize graph: %w", err)
	}
	return string(data), nil
}

// Deserialize parses a graph previously produced by Serialize.
func Deserialize(data string) (*Graph, error) {
	var s snapshot
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("deserialize graph: %w", err)
	}
	g := &Graph{nodeIdx: make(map[string]int), metadata: s.Metadata}
	for _, n := range s.Nodes {
		g.AddNode(n)
	}
	g.edges = append(g.edges, s.Edges...)
	return g, nil
}
