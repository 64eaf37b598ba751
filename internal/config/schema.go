package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mateoblack/sentinel/internal/scope"
)

// configSchema bounds the shape of a sentinel config file. It is
// intentionally permissive on the execution/runner block (validated
// structurally by Go's own JSON unmarshaling) and strict on the
// fields most likely to be hand-edited wrong.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["exploration"],
  "properties": {
    "exploration": {
      "type": "object",
      "required": ["startUrl"],
      "properties": {
        "startUrl": {"type": "string", "minLength": 1},
        "maxPages": {"type": "integer", "minimum": 0},
        "timeoutMs": {"type": "integer", "minimum": 0},
        "strategy": {"type": "string", "enum": ["breadth-first", "depth-first", ""]}
      }
    },
    "execution": {
      "type": "object",
      "properties": {
        "workers": {"type": "integer", "minimum": 0},
        "retries": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

// InvalidConfigError wraps every schema-validation and semantic-
// validation failure found in a Config, the spec §7 INVALID_CONFIG
// result.
type InvalidConfigError struct {
	Reasons []string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", strings.Join(e.Reasons, "; "))
}

// Validate checks cfg against the bundled JSON Schema, then runs the
// semantic checks a schema can't express (regex pattern compilation).
func Validate(cfg Config) error {
	var reasons []string

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshaling for validation: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("config: running schema validation: %w", err)
	}
	for _, e := range result.Errors() {
		reasons = append(reasons, e.String())
	}

	if invalid := scope.ValidateConfig(cfg.Exploration.Scope); len(invalid) > 0 {
		reasons = append(reasons, fmt.Sprintf("invalid scope regex pattern(s): %s", strings.Join(invalid, ", ")))
	}

	if len(reasons) > 0 {
		return &InvalidConfigError{Reasons: reasons}
	}
	return nil
}
