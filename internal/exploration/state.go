package exploration

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mateoblack/sentinel/internal/graph"
)

// State is the serializable snapshot of a Loop, enabling pause/resume
// across process restarts per spec §4.9.
type State struct {
	Queue               []string      `json:"queue"`
	VisitedFingerprints []string      `json:"visitedFingerprints"`
	GraphSnapshot       string        `json:"graphSnapshot"`
	ActivatedElementIDs []string      `json:"activatedElementIds"`
	TotalElementsFound  int           `json:"totalElementsFound"`
	StartedAt           time.Time     `json:"startedAt"`
	PendingEdges        []pendingEdge `json:"pendingEdges,omitempty"`
}

// Capture snapshots l's current progress. The returned State can be
// serialized and later passed to New to resume the same crawl.
func (l *Loop) Capture() (*State, error) {
	snapshot, err := l.g.Serialize()
	if err != nil {
		return nil, fmt.Errorf("exploration: capturing graph: %w", err)
	}

	visited := make([]string, 0, len(l.visited))
	for k := range l.visited {
		visited = append(visited, k)
	}
	activated := make([]string, 0, len(l.activatedIDs))
	for k := range l.activatedIDs {
		activated = append(activated, k)
	}

	return &State{
		Queue:               append([]string(nil), l.frontier...),
		VisitedFingerprints: visited,
		GraphSnapshot:       snapshot,
		ActivatedElementIDs: activated,
		TotalElementsFound:  l.totalElements,
		StartedAt:           l.startedAt,
		PendingEdges:        append([]pendingEdge(nil), l.pendingEdges...),
	}, nil
}

// Serialize renders s as JSON.
func (s *State) Serialize() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("exploration: serializing state: %w", err)
	}
	return string(data), nil
}

// DeserializeState parses a State previously produced by Serialize.
func DeserializeState(data string) (*State, error) {
	var s State
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("exploration: deserializing state: %w", err)
	}
	return &s, nil
}

// restoredFields is the unpacked form of a State, ready to seed a Loop.
type restoredFields struct {
	g             *graph.Graph
	visited       map[string]bool
	frontier      []string
	activatedIDs  map[string]bool
	totalElements int
	startedAt     time.Time
	pendingEdges  []pendingEdge
}

func (s *State) restore() (restoredFields, error) {
	g, err := graph.Deserialize(s.GraphSnapshot)
	if err != nil {
		return restoredFields{}, fmt.Errorf("exploration: restoring graph: %w", err)
	}

	visited := make(map[string]bool, len(s.VisitedFingerprints))
	for _, k := range s.VisitedFingerprints {
		visited[k] = true
	}
	activated := make(map[string]bool, len(s.ActivatedElementIDs))
	for _, id := range s.ActivatedElementIDs {
		activated[id] = true
	}

	return restoredFields{
		g:             g,
		visited:       visited,
		frontier:      append([]string(nil), s.Queue...),
		activatedIDs:  activated,
		totalElements: s.TotalElementsFound,
		startedAt:     s.StartedAt,
		pendingEdges:  append([]pendingEdge(nil), s.PendingEdges...),
	}, nil
}
