package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ResultFields are the four report fields every success response must carry
var ResultFields = []string{
	"cardiologist_report",
	"psychologist_report",
	"pulmonologist_report",
	"multidisciplinary_summary",
}

// BuildResultJSONSchema returns the success response schema as a generic map.
// Extra properties are tolerated; the four reports are required strings.
func BuildResultJSONSchema() map[string]any {
	props := make(map[string]any, len(ResultFields))
	for _, field := range ResultFields {
		props[field] = map[string]any{"type": "string"}
	}

	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   ResultFields,
	}
}

var (
	resultSchemaOnce sync.Once
	resultSchema     *jsonschema.Schema
	resultSchemaErr  error
)

func compiledResultSchema() (*jsonschema.Schema, error) {
	resultSchemaOnce.Do(func() {
		b, err := json.Marshal(BuildResultJSONSchema())
		if err != nil {
			resultSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("analysis_result.json", bytes.NewReader(b)); err != nil {
			resultSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		resultSchema, resultSchemaErr = compiler.Compile("analysis_result.json")
	})
	return resultSchema, resultSchemaErr
}

// validateResult checks raw against the success response schema
func validateResult(raw []byte) error {
	schema, err := compiledResultSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
