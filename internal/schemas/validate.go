// Package schemas validates AI-generated JSON against embedded JSON Schemas
// before the analyzers parse it. A schema violation is treated as a parse
// error by callers: recover to defaults, never propagate.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

var (
	compiled   = make(map[string]*gojsonschema.Schema)
	compiledMu sync.Mutex
)

// Schema file names.
const (
	ContentAnalysisBatch = "content_analysis_batch.schema.json"
	RoleRelevanceBatch   = "role_relevance_batch.schema.json"
	FeedbackSignals      = "feedback_signals.schema.json"
)

// ValidationError lists the field-level violations found in a document.
type ValidationError struct {
	Schema string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document does not match %s: %s", e.Schema, strings.Join(e.Errors, "; "))
}

// Validate checks a JSON document against the named embedded schema.
// Returns *ValidationError on violations, a plain error if the schema itself
// cannot be loaded (programmer error).
func Validate(schemaName, document string) error {
	schema, err := load(schemaName)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		// Malformed JSON document, not a schema problem.
		return &ValidationError{Schema: schemaName, Errors: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: schemaName}
	for _, desc := range result.Errors() {
		verr.Errors = append(verr.Errors, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return verr
}

func load(name string) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[name]; ok {
		return s, nil
	}

	data, err := schemaFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	compiled[name] = schema
	return schema, nil
}
