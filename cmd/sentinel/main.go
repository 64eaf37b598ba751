package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mateoblack/sentinel/internal/config"
	"github.com/mateoblack/sentinel/internal/driver/cdp"
	"github.com/mateoblack/sentinel/internal/execution"
	"github.com/mateoblack/sentinel/internal/exploration"
	"github.com/mateoblack/sentinel/internal/graph"
	"github.com/mateoblack/sentinel/internal/report"
	"github.com/mateoblack/sentinel/internal/scope"
	"github.com/mateoblack/sentinel/internal/store"
	"github.com/mateoblack/sentinel/internal/telemetry"
)

var (
	// Version info (injected by GoReleaser)
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgFile    string
	cdpAddr    string
	suiteOut   string
	openAPIDoc string

	rootCmd = &cobra.Command{
		Use:   "sentinel",
		Short: "Sentinel - autonomous browser QA: discovery and parallel test execution",
		Long: `Sentinel explores a web application with a real browser, building a
navigation graph and user journeys, then executes generated test cases
in parallel across isolated browser workers with retry and artifact
capture.`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .sentinel/config.yaml)")

	exploreCmd.Flags().StringVar(&cdpAddr, "cdp", "ws://127.0.0.1:9222/devtools/browser", "Chrome DevTools Protocol endpoint")
	exploreCmd.Flags().StringVar(&suiteOut, "graph-out", "", "path to write the discovered graph JSON (default .sentinel/graph.json)")
	exploreCmd.Flags().StringVar(&openAPIDoc, "openapi", "", "seed scope.allowPatterns from an OpenAPI document's declared paths")
	rootCmd.AddCommand(exploreCmd, runCmd, reportCmd, diffCmd, versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.FolderName)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sentinel %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

var exploreCmd = &cobra.Command{
	Use:   "explore <startUrl>",
	Short: "Discover an application's navigation graph by driving a real browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: using default exploration config (%v)\n", err)
		}
		cfg.Exploration.StartURL = args[0]

		if openAPIDoc != "" {
			data, err := os.ReadFile(openAPIDoc)
			if err != nil {
				return fmt.Errorf("reading openapi document: %w", err)
			}
			patterns, err := scope.AllowPatternsFromOpenAPI(data)
			if err != nil {
				return fmt.Errorf("deriving scope from openapi document: %w", err)
			}
			cfg.Exploration.Scope.AllowPatterns = append(cfg.Exploration.Scope.AllowPatterns, patterns...)
		}

		ctx := cmd.Context()
		drv := cdp.New(cdpAddr)
		if err := drv.Launch(ctx, "chromium", true); err != nil {
			return fmt.Errorf("launching browser: %w", err)
		}
		defer func() { _ = drv.Close(ctx) }()

		browserCtx, err := drv.CreateContext(ctx)
		if err != nil {
			return fmt.Errorf("creating browser context: %w", err)
		}
		defer func() { _ = drv.CloseContext(ctx, browserCtx) }()

		page, err := drv.CreatePage(ctx, browserCtx)
		if err != nil {
			return fmt.Errorf("creating page: %w", err)
		}
		defer func() { _ = drv.ClosePage(ctx, page) }()

		metrics := telemetry.New(prometheus.NewRegistry())
		loopCfg := exploration.Config{
			StartURL:           cfg.Exploration.StartURL,
			MaxPages:           cfg.Exploration.MaxPages,
			Timeout:            cfg.Exploration.Timeout(),
			Strategy:           exploration.Strategy(cfg.Exploration.Strategy),
			Scope:              cfg.Exploration.Scope,
			CycleLimits:        cfg.Exploration.CycleLimits,
			ReadinessConfig:    cfg.Exploration.ReadinessConfig,
			CoverageThresholds: cfg.Exploration.CoverageThresholds,
			Metrics:            metrics,
		}

		loop, err := exploration.New(loopCfg, drv, page, func(p exploration.Progress) {
			fmt.Fprintf(os.Stderr, "\rvisited=%d remaining=%d elements=%d elapsed=%dms",
				p.PagesVisited, p.PagesRemaining, p.ElementsActivated, p.ElapsedMs)
		}, nil)
		if err != nil {
			return err
		}

		result, err := loop.Run(ctx)
		if err != nil {
			return fmt.Errorf("running exploration: %w", err)
		}
		fmt.Fprintln(os.Stderr)

		graphJSON, err := result.Graph.Serialize()
		if err != nil {
			return err
		}
		outPath := suiteOut
		if outPath == "" {
			outPath = filepath.Join(config.FolderName, "graph.json")
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return fmt.Errorf("creating graph output directory: %w", err)
		}
		if err := os.WriteFile(outPath, []byte(graphJSON), 0o644); err != nil {
			return fmt.Errorf("writing graph: %w", err)
		}

		fmt.Printf("pages: %d/%d (%.1f%%)  elements: %d/%d (%.1f%%)  journeys: %d  cycles: %d\n",
			result.Coverage.Page.Covered, result.Coverage.Page.Total, result.Coverage.Page.Percentage,
			result.Coverage.Element.Covered, result.Coverage.Element.Total, result.Coverage.Element.Percentage,
			len(result.Journeys), result.CycleReport.Total)
		fmt.Printf("graph written to %s\n", outPath)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run <suite.json>",
	Short: "Execute a generated test suite across a pool of isolated browser workers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return &report.RunnerError{Code: report.ErrInvalidConfig, Message: err.Error()}
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading suite file: %w", err)
		}
		var cases []execution.TestCase
		if err := json.Unmarshal(data, &cases); err != nil {
			return fmt.Errorf("parsing suite file: %w", err)
		}
		if len(cases) == 0 {
			return &report.RunnerError{Code: report.ErrNoTestsFound, Message: fmt.Sprintf("no test cases found in %s", args[0])}
		}

		queue := execution.NewQueue()
		queue.EnqueueSuite(cases)

		metrics := telemetry.New(prometheus.NewRegistry())
		workerBinary := cfg.Execution.WorkerBinary
		if workerBinary == "" {
			workerBinary = "sentinel-worker"
		}
		spawn := func(ctx context.Context, id int) (execution.WorkerHandle, error) {
			return execution.StartProcessWorker(ctx, id, workerBinary)
		}
		scheduler := execution.NewScheduler(queue, cfg.Execution.Workers, cfg.Execution.Retries, cfg.Execution.Runner, spawn).WithMetrics(metrics)

		startedAt := time.Now()
		rawResult, err := scheduler.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("running scheduler: %w", err)
		}
		completedAt := time.Now()

		run := report.Build(uuid.NewString(), startedAt, completedAt, cfg.Execution.Runner, rawResult.Results)

		trendDir := filepath.Join(config.FolderName, "trend")
		if trendDB, err := store.Open(trendDir); err == nil {
			for _, r := range run.Results {
				_ = trendDB.Record(r.Suite, r.TestID, r.Status)
			}
			_ = trendDB.Close()
		}

		outPath := filepath.Join(cfg.Execution.Runner.OutputDir, "sentinel-report.json")
		reportData, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.Execution.Runner.OutputDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(outPath, reportData, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}

		fmt.Printf("run %s: %d total, %d passed, %d failed, %d passed-with-retry, %d skipped (%dms)\n",
			run.RunID, run.Summary.Total, run.Summary.Passed, run.Summary.Failed,
			run.Summary.PassedWithRetry, run.Summary.Skipped, run.Summary.DurationMs)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <runId>",
	Short: "Print the summary for a previously written sentinel-report.json",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		path := filepath.Join(cfg.Execution.Runner.OutputDir, "sentinel-report.json")
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading report: %w", err)
		}
		var run report.Run
		if err := json.Unmarshal(data, &run); err != nil {
			return fmt.Errorf("parsing report: %w", err)
		}
		if run.RunID != args[0] {
			fmt.Fprintf(os.Stderr, "Warning: report at %s belongs to run %s, not %s\n", path, run.RunID, args[0])
		}
		for _, r := range run.Results {
			line := fmt.Sprintf("[%s] %s/%s (%dms, retries=%d)", r.Status, r.Suite, r.Name, r.DurationMs, r.RetryCount)
			if r.Error != nil {
				line += fmt.Sprintf(" - %s", r.Error.Message)
			}
			fmt.Println(line)
		}
		fmt.Printf("total=%d passed=%d failed=%d passed-with-retry=%d skipped=%d\n",
			run.Summary.Total, run.Summary.Passed, run.Summary.Failed, run.Summary.PassedWithRetry, run.Summary.Skipped)
		return nil
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff <beforeGraph.json> <afterGraph.json>",
	Short: "Summarize node/edge drift between two explorations of the same start URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		before, err := loadGraph(args[0])
		if err != nil {
			return err
		}
		after, err := loadGraph(args[1])
		if err != nil {
			return err
		}

		gd, err := report.DiffGraphs(before, after)
		if err != nil {
			return fmt.Errorf("diffing graphs: %w", err)
		}

		for _, u := range gd.AddedNodeURLs {
			fmt.Printf("+ node %s\n", u)
		}
		for _, u := range gd.RemovedNodeURLs {
			fmt.Printf("- node %s\n", u)
		}
		for _, e := range gd.AddedEdges {
			fmt.Printf("+ edge %s\n", e)
		}
		for _, e := range gd.RemovedEdges {
			fmt.Printf("- edge %s\n", e)
		}
		fmt.Printf("%d node(s) added, %d removed; %d edge(s) added, %d removed; +%d/-%d lines\n",
			len(gd.AddedNodeURLs), len(gd.RemovedNodeURLs), len(gd.AddedEdges), len(gd.RemovedEdges),
			gd.LinesAdded, gd.LinesRemoved)
		return nil
	},
}

func loadGraph(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph %s: %w", path, err)
	}
	g, err := graph.Deserialize(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing graph %s: %w", path, err)
	}
	return g, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
