package bank

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://question-bank.json"

// bankSchema describes the on-disk question bank document.
var bankSchema = map[string]any{
	"type":     "object",
	"required": []string{"version", "questions"},
	"properties": map[string]any{
		"version": map[string]any{"type": "string"},
		"questions": map[string]any{
			"type":          "object",
			"minProperties": 1,
			"additionalProperties": map[string]any{
				"type":     "object",
				"required": []string{"question", "choices", "correct_index", "domain"},
				"properties": map[string]any{
					"question": map[string]any{"type": "string", "minLength": 1},
					"choices": map[string]any{
						"type":        "array",
						"minItems":    2,
						"maxItems":    6,
						"uniqueItems": true,
						"items":       map[string]any{"type": "string", "minLength": 1},
					},
					"correct_index": map[string]any{"type": "integer", "minimum": 0},
					"explanation":   map[string]any{"type": "string"},
					"domain": map[string]any{
						"type": "string",
						"enum": []string{"Structural", "Crash", "CFD", "NVH"},
					},
				},
			},
		},
	},
}

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// validateDocument checks raw JSON against the bank schema.
func validateDocument(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := getCompiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func getCompiledSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		// The compiler wants a parsed JSON value, not Go maps with typed slices.
		defBytes, err := json.Marshal(bankSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, defParsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}
