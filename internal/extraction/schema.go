package extraction

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// Schema names.
const (
	SchemaJobSummary   = "job_summary"
	SchemaParsedResume = "parsed_resume"
)

// FieldError is a single schema violation at a field path.
type FieldError struct {
	Field   string
	Message string
}

// ShapeError reports that an extraction result does not satisfy its schema.
type ShapeError struct {
	Schema string
	Errors []FieldError
}

func (e *ShapeError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("%s failed shape check: %s", e.Schema, strings.Join(parts, "; "))
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Schema string
	Cause  error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("failed to load schema %s: %v", e.Schema, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// schemaSet holds compiled schemas keyed by name.
type schemaSet map[string]*gojsonschema.Schema

func loadSchemas() (schemaSet, error) {
	set := make(schemaSet)
	for _, name := range []string{SchemaJobSummary, SchemaParsedResume} {
		raw, err := schemaFiles.ReadFile("schemas/" + name + ".schema.json")
		if err != nil {
			return nil, &SchemaLoadError{Schema: name, Cause: err}
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, &SchemaLoadError{Schema: name, Cause: err}
		}
		set[name] = schema
	}
	return set, nil
}

// validate checks v against the named schema.
func (s schemaSet) validate(name string, v any) error {
	schema, ok := s[name]
	if !ok {
		return &SchemaLoadError{Schema: name, Cause: fmt.Errorf("unknown schema")}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(v))
	if err != nil {
		return fmt.Errorf("failed to validate %s: %w", name, err)
	}
	if result.Valid() {
		return nil
	}

	shapeErr := &ShapeError{Schema: name, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		shapeErr.Errors = append(shapeErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return shapeErr
}
