// Package report defines the structured findings shapes spec.md §6
// mandates as the core's output contract. The core never renders these —
// text/JSON/DOT/HTML rendering is an out-of-scope external collaborator —
// but it does expose schema validation so a renderer can trust the payload
// before consuming it, the same guarantee the teacher gives its own SARIF
// output (internal/report/sarif_schema_test.go) generalized into an
// exported entry point.
package report

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ModuleReport is the §6 minimal module-mode JSON shape.
type ModuleReport struct {
	DeadModules []string `json:"dead_modules"`
}

// FunctionFinding is one entry in a function/trait-method report's `dead`
// array.
type FunctionFinding struct {
	Name       string `json:"name"`
	FullPath   string `json:"full_path"`
	Visibility string `json:"visibility"`
	File       string `json:"file"`
	IsMethod   bool   `json:"is_method"`
}

// FunctionReport is the §6 minimal function-mode JSON shape.
type FunctionReport struct {
	TotalFunctions     int               `json:"total_functions"`
	ReachableFunctions int               `json:"reachable_functions"`
	DeadFunctions      int               `json:"dead_functions"`
	PublicDead         int               `json:"public_dead"`
	PrivateDead        int               `json:"private_dead"`
	Dead               []FunctionFinding `json:"dead"`
}

// Finding is a mode-agnostic dead-entity record used by modes beyond
// module/function (generic, macro, constant, enum variant, match arm).
type Finding struct {
	Mode             string `json:"mode"`
	Name             string `json:"name"`
	FullPath         string `json:"full_path"`
	Visibility       string `json:"visibility,omitempty"`
	File             string `json:"file"`
	Line             int    `json:"line"`
	IsMethod         bool   `json:"is_method,omitempty"`
	ParentType       string `json:"parent_type,omitempty"`
	NonFinalWildcard bool   `json:"non_final_wildcard,omitempty"`
}

// ModeReport is the generic per-mode shape shared by generic, macro,
// constant, enum-variant, and match-arm reports.
type ModeReport struct {
	Mode        string    `json:"mode"`
	Total       int       `json:"total"`
	Reachable   int       `json:"reachable"`
	DeadCount   int       `json:"dead_count"`
	PublicDead  int       `json:"public_dead"`
	PrivateDead int       `json:"private_dead"`
	Dead        []Finding `json:"dead"`
}

// Report bundles every mode's findings for one crate analysis.
type Report struct {
	CrateRoot string       `json:"crate_root"`
	Modules   ModuleReport `json:"modules"`
	Functions FunctionReport `json:"functions"`
	Modes     []ModeReport `json:"modes"`
	Warnings  []string     `json:"warnings,omitempty"`
}

// moduleSchema and functionSchema are bundled JSON Schema documents for the
// two literal shapes spec.md §6 specifies exactly. ModeReport/Finding, this
// expansion's generalization of that shape to the other six modes, have no
// bundled schema and no validator.
const moduleSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["dead_modules"],
  "properties": {
    "dead_modules": { "type": "array", "items": { "type": "string" } }
  }
}`

const functionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["total_functions", "reachable_functions", "dead_functions", "public_dead", "private_dead", "dead"],
  "properties": {
    "total_functions": { "type": "integer" },
    "reachable_functions": { "type": "integer" },
    "dead_functions": { "type": "integer" },
    "public_dead": { "type": "integer" },
    "private_dead": { "type": "integer" },
    "dead": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "full_path", "visibility", "file", "is_method"],
        "properties": {
          "name": { "type": "string" },
          "full_path": { "type": "string" },
          "visibility": { "type": "string" },
          "file": { "type": "string" },
          "is_method": { "type": "boolean" }
        }
      }
    }
  }
}`

// ValidateModulesJSON validates body against the §6 dead-modules shape.
func ValidateModulesJSON(body []byte) error {
	return validateAgainst(moduleSchema, body)
}

// ValidateFunctionsJSON validates body against the §6 function-report
// shape.
func ValidateFunctionsJSON(body []byte) error {
	return validateAgainst(functionSchema, body)
}

func validateAgainst(schema string, body []byte) error {
	if !json.Valid(body) {
		return fmt.Errorf("report: invalid JSON payload")
	}
	schemaLoader := gojsonschema.NewStringLoader(schema)
	docLoader := gojsonschema.NewBytesLoader(body)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("validate report: %w", err)
	}
	if result.Valid() {
		return nil
	}
	errs := result.Errors()
	msg := "report failed schema validation"
	if len(errs) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, errs[0].String())
	}
	return fmt.Errorf("%s", msg)
}

// MarshalIndent is a small convenience wrapper that produces stable,
// human-diffable JSON; the package's tests use it.
func MarshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
