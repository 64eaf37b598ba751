// Package journey classifies paths through a completed application
// graph into semantically labeled user journeys.
package journey

import (
	"fmt"
	"strings"

	"github.com/mateoblack/sentinel/internal/graph"
)

// Type discriminates the kind of journey a path represents.
type Type string

const (
	TypeAuthentication   Type = "authentication"
	TypeFormSubmission   Type = "form-submission"
	TypeContentNavigation Type = "content-navigation"
	TypeCustom           Type = "custom"
)

// Journey is a labeled path through the application graph.
type Journey struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Type       Type         `json:"type"`
	Steps      []graph.Edge `json:"steps"`
	EntryNodeID string      `json:"entryNodeId"`
	ExitNodeID  string      `json:"exitNodeId"`
}

var loginTokens = []string{"login", "signin", "sign-in", "/auth", "sign in"}

func isLoginLike(node graph.Node) bool {
	haystack := strings.ToLower(node.URL + " " + node.Title)
	for _, token := range loginTokens {
		if strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}

func label(t Type) string {
	switch t {
	case TypeAuthentication:
		return "Authentication"
	case TypeFormSubmission:
		return "Form Submission"
	case TypeContentNavigation:
		return "Content Navigation"
	default:
		return "Custom"
	}
}

func nodeLabel(n graph.Node) string {
	if n.Title != "" {
		return n.Title
	}
	return n.URL
}

func name(t Type, entry, exit graph.Node) string {
	return fmt.Sprintf("%s: %s → %s", label(t), nodeLabel(entry), nodeLabel(exit))
}

// Detect walks g and emits every authentication, form-submission, and
// content-navigation journey per spec §4.8.
func Detect(g *graph.Graph) []Journey {
	var journeys []Journey
	counter := 0
	nextID := func() string {
		counter++
		return fmt.Sprintf("journey-%d", counter)
	}

	nodeByID := make(map[string]graph.Node)
	for _, n := range g.Nodes() {
		nodeByID[n.ID] = n
	}

	journeys = append(journeys, detectAuthentication(g, nodeByID, nextID)...)
	journeys = append(journeys, detectFormSubmission(g, nodeByID, nextID)...)
	journeys = append(journeys, detectContentNavigation(g, nodeByID, nextID)...)
	return journeys
}

func detectAuthentication(g *graph.Graph, nodeByID map[string]graph.Node, nextID func() string) []Journey {
	var out []Journey
	for _, n := range g.Nodes() {
		if !isLoginLike(n) {
			continue
		}
		for _, e := range g.GetEdgesFrom(n.ID) {
			if e.ActionType != graph.ActionFormSubmit {
				continue
			}
			target, ok := nodeByID[e.TargetID]
			if !ok || isLoginLike(target) {
				continue
			}
			out = append(out, Journey{
				ID:          nextID(),
				Name:        name(TypeAuthentication, n, target),
				Type:        TypeAuthentication,
				Steps:       []graph.Edge{e},
				EntryNodeID: n.ID,
				ExitNodeID:  target.ID,
			})
		}
	}
	return out
}

func detectFormSubmission(g *graph.Graph, nodeByID map[string]graph.Node, nextID func() string) []Journey {
	var out []Journey
	for _, e := range g.Edges() {
		if e.ActionType != graph.ActionFormSubmit {
			continue
		}
		source, ok := nodeByID[e.SourceID]
		if !ok || isLoginLike(source) {
			continue
		}
		target := nodeByID[e.TargetID]
		out = append(out, Journey{
			ID:          nextID(),
			Name:        name(TypeFormSubmission, source, target),
			Type:        TypeFormSubmission,
			Steps:       []graph.Edge{e},
			EntryNodeID: source.ID,
			ExitNodeID:  target.ID,
		})
	}
	return out
}

func detectContentNavigation(g *graph.Graph, nodeByID map[string]graph.Node, nextID func() string) []Journey {
	visited := make(map[string]bool)
	var out []Journey

	for _, n := range g.Nodes() {
		if visited[n.ID] {
			continue
		}
		chain := followNavigationChain(g, n.ID, visited)
		if len(chain) < 2 {
			continue
		}
		entry := nodeByID[chain[0].SourceID]
		exit := nodeByID[chain[len(chain)-1].TargetID]
		out = append(out, Journey{
			ID:          nextID(),
			Name:        name(TypeContentNavigation, entry, exit),
			Type:        TypeContentNavigation,
			Steps:       chain,
			EntryNodeID: entry.ID,
			ExitNodeID:  exit.ID,
		})
	}
	return out
}

// followNavigationChain walks the unique outgoing navigation edge from
// nodeID, terminating per spec §4.8: zero or multiple outgoing
// navigation edges, or a target already visited.
func followNavigationChain(g *graph.Graph, nodeID string, visited map[string]bool) []graph.Edge {
	var chain []graph.Edge
	current := nodeID
	visited[current] = true

	for {
		var navEdges []graph.Edge
		for _, e := range g.GetEdgesFrom(current) {
			if e.ActionType == graph.ActionNavigation {
				navEdges = append(navEdges, e)
			}
		}
		if len(navEdges) != 1 {
			break
		}
		next := navEdges[0]
		if next.TargetID == "" || visited[next.TargetID] {
			break
		}
		chain = append(chain, next)
		visited[next.TargetID] = true
		current = next.TargetID
	}
	return chain
}

// Classify assigns a Type to an ad-hoc ordered step list per the
// classification rule in spec §4.8, for steps that did not come from
// Detect (e.g. generator-composed journeys).
func Classify(steps []graph.Edge, nodeByID map[string]graph.Node) Type {
	if len(steps) == 0 {
		return TypeCustom
	}
	first := steps[0]
	if first.ActionType == graph.ActionFormSubmit {
		source, sourceOK := nodeByID[first.SourceID]
		target, targetOK := nodeByID[first.TargetID]
		if sourceOK && isLoginLike(source) && (!targetOK || !isLoginLike(target)) {
			return TypeAuthentication
		}
	}

	for _, s := range steps {
		if s.ActionType == graph.ActionFormSubmit {
			return TypeFormSubmission
		}
	}

	allNavigation := true
	for _, s := range steps {
		if s.ActionType != graph.ActionNavigation {
			allNavigation = false
			break
		}
	}
	if allNavigation {
		return TypeContentNavigation
	}
	return TypeCustom
}
