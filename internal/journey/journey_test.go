package journey

import (
	"testing"
	"time"

	"github.com/mateoblack/sentinel/internal/graph"
)

func buildGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New("https://example.com/", time.Now())
	g.AddNode(graph.Node{ID: "login", URL: "https://example.com/login", Title: "Sign In"})
	g.AddNode(graph.Node{ID: "dashboard", URL: "https://example.com/dashboard", Title: "Dashboard"})
	g.AddNode(graph.Node{ID: "profile", URL: "https://example.com/profile", Title: "Profile"})
	g.AddNode(graph.Node{ID: "settings", URL: "https://example.com/settings", Title: "Settings"})

	mustEdge(t, g, graph.Edge{SourceID: "login", TargetID: "dashboard", ActionType: graph.ActionFormSubmit, Selector: "#login-form"})
	mustEdge(t, g, graph.Edge{SourceID: "dashboard", TargetID: "profile", ActionType: graph.ActionNavigation, Selector: "a.profile"})
	mustEdge(t, g, graph.Edge{SourceID: "profile", TargetID: "settings", ActionType: graph.ActionNavigation, Selector: "a.settings"})
	return g
}

func mustEdge(t *testing.T, g *graph.Graph, e graph.Edge) {
	t.Helper()
	if err := g.AddEdge(e); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
}

func TestDetect_AuthenticationJourney(t *testing.T) {
	g := buildGraph(t)
	journeys := Detect(g)

	found := false
	for _, j := range journeys {
		if j.Type == TypeAuthentication {
			found = true
			if j.EntryNodeID != "login" || j.ExitNodeID != "dashboard" {
				t.Errorf("unexpected authentication journey endpoints: %+v", j)
			}
		}
	}
	if !found {
		t.Fatal("expected an authentication journey")
	}
}

func TestDetect_ContentNavigationChain(t *testing.T) {
	g := buildGraph(t)
	journeys := Detect(g)

	found := false
	for _, j := range journeys {
		if j.Type == TypeContentNavigation {
			found = true
			if len(j.Steps) != 2 {
				t.Errorf("expected a 2-edge navigation chain, got %d", len(j.Steps))
			}
		}
	}
	if !found {
		t.Fatal("expected a content-navigation journey")
	}
}

func TestDetect_FormSubmitFromLoginExcludedFromFormSubmissionJourneys(t *testing.T) {
	g := buildGraph(t)
	journeys := Detect(g)

	for _, j := range journeys {
		if j.Type == TypeFormSubmission && j.EntryNodeID == "login" {
			t.Error("form-submit edges from a login page must not also be classified as form-submission journeys")
		}
	}
}

func TestClassify_AllNavigationIsContentNavigation(t *testing.T) {
	nodes := map[string]graph.Node{"a": {ID: "a"}, "b": {ID: "b"}}
	steps := []graph.Edge{{SourceID: "a", TargetID: "b", ActionType: graph.ActionNavigation}}
	if got := Classify(steps, nodes); got != TypeContentNavigation {
		t.Errorf("expected content-navigation, got %v", got)
	}
}

func TestClassify_AnyFormSubmitIsFormSubmission(t *testing.T) {
	nodes := map[string]graph.Node{"a": {ID: "a", URL: "/home"}, "b": {ID: "b"}}
	steps := []graph.Edge{
		{SourceID: "a", TargetID: "b", ActionType: graph.ActionNavigation},
		{SourceID: "b", TargetID: "a", ActionType: graph.ActionFormSubmit},
	}
	if got := Classify(steps, nodes); got != TypeFormSubmission {
		t.Errorf("expected form-submission, got %v", got)
	}
}

func TestClassify_LoginFirstStepIsAuthentication(t *testing.T) {
	nodes := map[string]graph.Node{"login": {ID: "login", URL: "/login"}, "dash": {ID: "dash"}}
	steps := []graph.Edge{{SourceID: "login", TargetID: "dash", ActionType: graph.ActionFormSubmit}}
	if got := Classify(steps, nodes); got != TypeAuthentication {
		t.Errorf("expected authentication, got %v", got)
	}
}
