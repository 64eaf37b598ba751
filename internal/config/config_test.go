package config

import (
	"testing"

	"github.com/mateoblack/sentinel/internal/scope"
)

func validConfig() Config {
	return Config{
		Exploration: ExplorationConfig{
			StartURL:  "https://example.com/",
			MaxPages:  50,
			TimeoutMs: 60000,
			Strategy:  "breadth-first",
		},
		Execution: ExecutionConfig{
			Workers: 4,
			Retries: 2,
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_MissingStartURL(t *testing.T) {
	cfg := validConfig()
	cfg.Exploration.StartURL = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for empty startUrl")
	}
	var invalidErr *InvalidConfigError
	if !asInvalidConfigError(err, &invalidErr) {
		t.Fatalf("expected *InvalidConfigError, got %T", err)
	}
}

func TestValidate_BadStrategy(t *testing.T) {
	cfg := validConfig()
	cfg.Exploration.Strategy = "sideways"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for invalid strategy enum")
	}
}

func TestValidate_NegativeWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Execution.Workers = -1

	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for negative workers")
	}
}

func TestValidate_InvalidScopeRegex(t *testing.T) {
	cfg := validConfig()
	cfg.Exploration.Scope = scope.Config{DenyPatterns: []string{"("}}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for invalid deny regex")
	}
	var invalidErr *InvalidConfigError
	if !asInvalidConfigError(err, &invalidErr) {
		t.Fatalf("expected *InvalidConfigError, got %T", err)
	}
	if len(invalidErr.Reasons) == 0 {
		t.Fatal("expected at least one reason")
	}
}

func TestExplorationConfig_Timeout(t *testing.T) {
	cfg := ExplorationConfig{TimeoutMs: 1500}
	if got := cfg.Timeout().Milliseconds(); got != 1500 {
		t.Errorf("expected 1500ms, got %d", got)
	}
}

func asInvalidConfigError(err error, target **InvalidConfigError) bool {
	ice, ok := err.(*InvalidConfigError)
	if !ok {
		return false
	}
	*target = ice
	return true
}
