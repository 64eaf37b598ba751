// Package exploration composes the URL normalizer, DOM hasher, scope
// filter, cycle detector, graph store, readiness waiter, and coverage
// calculator into the bounded crawl described by spec §4.9.
package exploration

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mateoblack/sentinel/internal/coverage"
	"github.com/mateoblack/sentinel/internal/cycle"
	"github.com/mateoblack/sentinel/internal/driver"
	"github.com/mateoblack/sentinel/internal/fingerprint"
	"github.com/mateoblack/sentinel/internal/graph"
	"github.com/mateoblack/sentinel/internal/journey"
	"github.com/mateoblack/sentinel/internal/readiness"
	"github.com/mateoblack/sentinel/internal/scope"
)

const domExtractionScript = "__sentinel_extract_dom__"

// Result is everything the crawl produces.
type Result struct {
	Graph       *graph.Graph
	Coverage    coverage.Metrics
	Journeys    []journey.Journey
	CycleReport cycle.Report
}

// pendingEdge buffers a navigation edge discovered before its target
// node exists, per spec §9.
type pendingEdge struct {
	SourceID string `json:"sourceId"`
	Selector string `json:"selector"`
	URL      string `json:"url"`
}

// Loop owns all mutable crawl state and drives a single browser page
// through the URL frontier.
type Loop struct {
	cfg      Config
	drv      driver.Driver
	page     driver.Page
	progress ProgressFunc

	g               *graph.Graph
	visited         map[string]bool
	urlVisitCount   map[string]int
	frontier        []string
	cycles          cycle.Report
	activatedIDs    map[string]bool
	totalElements   int
	startedAt       time.Time
	baseHost        string
	scopeFilter     *scope.Filter
	cycleDetector   *cycle.Detector
	nodeIDByURL     map[string]string
	pendingEdges    []pendingEdge
}

// New builds a Loop ready to Run, or restores one from a previously
// serialized State (resume semantics, spec §4.9 "Pause/resume").
func New(cfg Config, drv driver.Driver, page driver.Page, progress ProgressFunc, resume *State) (*Loop, error) {
	base, err := url.Parse(cfg.StartURL)
	if err != nil {
		return nil, fmt.Errorf("exploration: invalid start URL %q: %w", cfg.StartURL, err)
	}

	l := &Loop{
		cfg:           cfg,
		drv:           drv,
		page:          page,
		progress:      progress,
		urlVisitCount: make(map[string]int),
		visited:       make(map[string]bool),
		activatedIDs:  make(map[string]bool),
		nodeIDByURL:   make(map[string]string),
		baseHost:      base.Hostname(),
		scopeFilter:   scope.NewFilter(base.Hostname(), cfg.Scope),
		cycleDetector: cycle.NewDetector(cfg.CycleLimits),
	}

	if resume != nil {
		restored, err := resume.restore()
		if err != nil {
			return nil, err
		}
		l.g = restored.g
		l.visited = restored.visited
		l.frontier = restored.frontier
		l.activatedIDs = restored.activatedIDs
		l.totalElements = restored.totalElements
		l.startedAt = restored.startedAt
		l.pendingEdges = restored.pendingEdges
		for _, n := range l.g.Nodes() {
			l.nodeIDByURL[fingerprint.NormalizeURL(n.URL)] = n.ID
		}
	} else {
		l.g = graph.New(cfg.StartURL, time.Now())
		l.frontier = []string{cfg.StartURL}
		l.startedAt = time.Now()
	}

	return l, nil
}

// Run drives the crawl to completion: exhausted frontier, maxPages,
// timeout, or a satisfied coverage threshold.
func (l *Loop) Run(ctx context.Context) (Result, error) {
	for {
		if l.shouldStop() {
			break
		}

		candidate := l.popFrontier()

		decision := l.scopeFilter.Check(candidate)
		if !decision.Allowed {
			continue
		}

		if err := l.drv.Navigate(ctx, l.page, candidate, driver.NavigateOptions{}); err != nil {
			continue
		}

		readiness.Wait(ctx, l.cfg.ReadinessConfig, func(ctx context.Context) (int, error) {
			var n int
			err := l.drv.Evaluate(ctx, l.page, "document.body.innerHTML.length", &n)
			return n, err
		})

		actualURL, err := l.drv.CurrentURL(ctx, l.page)
		if err != nil {
			continue
		}

		var raw fingerprint.RawDomData
		if err := l.drv.Evaluate(ctx, l.page, domExtractionScript, &raw); err != nil {
			continue
		}
		root := fingerprint.Parse(raw)

		domHash := fingerprint.HashDOM(root)
		normalizedURL := fingerprint.NormalizeURL(actualURL)
		fp := fingerprint.StateFingerprint{NormalizedURL: normalizedURL, DomHash: domHash}

		if entry, isCycle := l.cycleDetector.Check(fp, l.visited, l.urlVisitCount); isCycle {
			l.cycles.Add(entry)
			if l.cfg.Metrics != nil {
				l.cfg.Metrics.CyclesDetected.WithLabelValues(string(entry.Reason)).Inc()
			}
			continue
		}
		l.visited[fp.Key()] = true
		l.urlVisitCount[normalizedURL]++

		elements, _ := classifyInteractiveElements(actualURL, root)

		var title string
		_ = l.drv.Evaluate(ctx, l.page, "document.title", &title)

		nodeID := fmt.Sprintf("node-%d", len(l.g.Nodes())+1)
		l.g.AddNode(graph.Node{
			ID:                 nodeID,
			URL:                actualURL,
			Title:              title,
			ElementCount:       len(elements),
			DiscoveryTimestamp: time.Now(),
			DomHash:            domHash,
		})
		l.nodeIDByURL[normalizedURL] = nodeID
		l.resolvePendingEdges(normalizedURL, nodeID)
		if l.cfg.Metrics != nil {
			l.cfg.Metrics.PagesVisited.Inc()
		}

		for _, el := range elements {
			l.activatedIDs[el.ID] = true
			if el.Category != CategoryNavigationLink {
				continue
			}
			if d := l.scopeFilter.Check(el.Href); !d.Allowed {
				continue
			}
			l.frontier = append(l.frontier, el.Href)
			l.queueOrAddEdge(nodeID, el.Selector, el.Href)
		}
		l.totalElements += len(elements)

		l.emitProgress()

		if l.cfg.CoverageThresholds != nil {
			metrics := l.currentCoverage()
			if coverage.CheckThresholds(metrics, *l.cfg.CoverageThresholds).Met {
				break
			}
		}
	}

	completedAt := time.Now()
	if err := l.g.Complete(completedAt); err != nil {
		return Result{}, fmt.Errorf("exploration: completing graph: %w", err)
	}
	if l.cfg.Metrics != nil {
		l.cfg.Metrics.ExplorationTime.Observe(time.Since(l.startedAt).Seconds())
	}

	return Result{
		Graph:       l.g,
		Coverage:    l.currentCoverage(),
		Journeys:    journey.Detect(l.g),
		CycleReport: l.cycles,
	}, nil
}

func (l *Loop) queueOrAddEdge(sourceID, selector, targetURL string) {
	normalized := fingerprint.NormalizeURL(targetURL)
	if targetID, ok := l.nodeIDByURL[normalized]; ok {
		_ = l.g.AddEdge(graph.Edge{SourceID: sourceID, TargetID: targetID, ActionType: graph.ActionNavigation, Selector: selector})
		return
	}
	l.pendingEdges = append(l.pendingEdges, pendingEdge{SourceID: sourceID, Selector: selector, URL: normalized})
}

func (l *Loop) resolvePendingEdges(normalizedURL, nodeID string) {
	remaining := l.pendingEdges[:0]
	for _, pe := range l.pendingEdges {
		if pe.URL == normalizedURL {
			_ = l.g.AddEdge(graph.Edge{SourceID: pe.SourceID, TargetID: nodeID, ActionType: graph.ActionNavigation, Selector: pe.Selector})
			continue
		}
		remaining = append(remaining, pe)
	}
	l.pendingEdges = remaining
}

func (l *Loop) shouldStop() bool {
	if len(l.frontier) == 0 {
		return true
	}
	if l.cfg.MaxPages > 0 && len(l.g.Nodes()) >= l.cfg.MaxPages {
		return true
	}
	if l.cfg.Timeout > 0 && time.Since(l.startedAt) >= l.cfg.Timeout {
		return true
	}
	return false
}

func (l *Loop) popFrontier() string {
	if l.cfg.Strategy == DepthFirst {
		last := l.frontier[len(l.frontier)-1]
		l.frontier = l.frontier[:len(l.frontier)-1]
		return last
	}
	first := l.frontier[0]
	l.frontier = l.frontier[1:]
	return first
}

func (l *Loop) currentCoverage() coverage.Metrics {
	pagesVisited := len(l.g.Nodes())
	pagesDiscovered := pagesVisited + len(l.frontier)

	edgesDiscovered := len(l.g.Edges()) + len(l.pendingEdges)
	edgesTraversed := 0
	for _, e := range l.g.Edges() {
		if e.TargetID != "" {
			edgesTraversed++
		}
	}

	return coverage.Calculate(pagesVisited, pagesDiscovered, len(l.activatedIDs), l.totalElements, edgesTraversed, edgesDiscovered)
}

func (l *Loop) emitProgress() {
	if l.progress == nil {
		return
	}
	l.progress(Progress{
		PagesDiscovered:   len(l.g.Nodes()) + len(l.frontier),
		PagesVisited:      len(l.g.Nodes()),
		PagesRemaining:    len(l.frontier),
		ElementsActivated: len(l.activatedIDs),
		ElapsedMs:         time.Since(l.startedAt).Milliseconds(),
	})
}
