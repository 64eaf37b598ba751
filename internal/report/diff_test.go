package report

import (
	"sort"
	"testing"
	"time"

	"github.com/mateoblack/sentinel/internal/graph"
)

func buildGraph(startURL string, nodes []graph.Node, edges []graph.Edge) *graph.Graph {
	g := graph.New(startURL, time.Now())
	for _, n := range nodes {
		g.AddNode(n)
	}
	for _, e := range edges {
		_ = g.AddEdge(e)
	}
	return g
}

func TestDiffGraphs_DetectsAddedAndRemovedNodes(t *testing.T) {
	before := buildGraph("https://example.com/", []graph.Node{
		{ID: "n1", URL: "https://example.com/"},
		{ID: "n2", URL: "https://example.com/about"},
	}, nil)

	after := buildGraph("https://example.com/", []graph.Node{
		{ID: "n1", URL: "https://example.com/"},
		{ID: "n3", URL: "https://example.com/pricing"},
	}, nil)

	gd, err := DiffGraphs(before, after)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gd.AddedNodeURLs) != 1 || gd.AddedNodeURLs[0] != "https://example.com/pricing" {
		t.Fatalf("AddedNodeURLs = %v, want [https://example.com/pricing]", gd.AddedNodeURLs)
	}
	if len(gd.RemovedNodeURLs) != 1 || gd.RemovedNodeURLs[0] != "https://example.com/about" {
		t.Fatalf("RemovedNodeURLs = %v, want [https://example.com/about]", gd.RemovedNodeURLs)
	}
}

func TestDiffGraphs_DetectsAddedEdges(t *testing.T) {
	nodes := []graph.Node{
		{ID: "n1", URL: "https://example.com/"},
		{ID: "n2", URL: "https://example.com/about"},
	}
	before := buildGraph("https://example.com/", nodes, nil)
	after := buildGraph("https://example.com/", nodes, []graph.Edge{
		{SourceID: "n1", TargetID: "n2", ActionType: graph.ActionNavigation, Selector: "a.about"},
	})

	gd, err := DiffGraphs(before, after)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gd.AddedEdges) != 1 {
		t.Fatalf("AddedEdges = %v, want 1 entry", gd.AddedEdges)
	}
	if len(gd.RemovedEdges) != 0 {
		t.Fatalf("RemovedEdges = %v, want none", gd.RemovedEdges)
	}
}

func TestDiffGraphs_IdenticalGraphsProduceNoDrift(t *testing.T) {
	nodes := []graph.Node{{ID: "n1", URL: "https://example.com/"}}
	before := buildGraph("https://example.com/", nodes, nil)
	after := buildGraph("https://example.com/", nodes, nil)

	gd, err := DiffGraphs(before, after)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gd.AddedNodeURLs)+len(gd.RemovedNodeURLs)+len(gd.AddedEdges)+len(gd.RemovedEdges) != 0 {
		t.Fatalf("expected no drift, got %+v", gd)
	}
	if gd.LinesAdded != 0 || gd.LinesRemoved != 0 {
		t.Fatalf("expected no line-level changes, got +%d/-%d", gd.LinesAdded, gd.LinesRemoved)
	}
}

func TestDiffGraphs_LineStatsReflectChangeCount(t *testing.T) {
	before := buildGraph("https://example.com/", []graph.Node{
		{ID: "n1", URL: "https://example.com/"},
		{ID: "n2", URL: "https://example.com/about"},
	}, nil)
	after := buildGraph("https://example.com/", []graph.Node{
		{ID: "n1", URL: "https://example.com/"},
		{ID: "n3", URL: "https://example.com/pricing"},
	}, nil)

	gd, err := DiffGraphs(before, after)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gd.LinesAdded != 1 || gd.LinesRemoved != 1 {
		t.Fatalf("LinesAdded/Removed = +%d/-%d, want +1/-1", gd.LinesAdded, gd.LinesRemoved)
	}

	sorted := append([]string(nil), gd.AddedNodeURLs...)
	sort.Strings(sorted)
	if sorted[0] != gd.AddedNodeURLs[0] {
		t.Fatalf("expected AddedNodeURLs to already be sorted, got %v", gd.AddedNodeURLs)
	}
}
