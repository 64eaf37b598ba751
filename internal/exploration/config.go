package exploration

import (
	"time"

	"github.com/mateoblack/sentinel/internal/coverage"
	"github.com/mateoblack/sentinel/internal/cycle"
	"github.com/mateoblack/sentinel/internal/readiness"
	"github.com/mateoblack/sentinel/internal/scope"
	"github.com/mateoblack/sentinel/internal/telemetry"
)

// Strategy picks which end of the frontier the loop drains.
type Strategy string

const (
	BreadthFirst Strategy = "breadth-first"
	DepthFirst   Strategy = "depth-first"
)

// Config configures one bounded crawl, spec §4.9.
type Config struct {
	StartURL           string
	MaxPages           int
	Timeout            time.Duration
	Strategy           Strategy
	Scope              scope.Config
	CycleLimits        cycle.Limits
	ReadinessConfig    readiness.Config
	CoverageThresholds *coverage.Thresholds // nil disables threshold-triggered early stop
	Metrics            *telemetry.Metrics   // nil disables metric emission
}

// Progress is emitted once per loop iteration that visits a page.
type Progress struct {
	PagesDiscovered   int
	PagesVisited      int
	PagesRemaining    int
	ElementsActivated int
	ElapsedMs         int64
}

// ProgressFunc receives a Progress update; nil is a valid no-op callback.
type ProgressFunc func(Progress)
