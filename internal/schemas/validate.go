// Package schemas checks model output and imported records against the
// embedded JSON Schemas.
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

// Embedded schema names.
const (
	JobProfile = "job_profile"
	Favorite   = "favorite"
)

// FieldError is one schema violation. Field is a dotted path, or "(root)"
// for the document as a whole.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	parts := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "document does not match schema: " + strings.Join(parts, "; ")
}

// Fields returns the failing field paths.
func (ve *ValidationError) Fields() []string {
	out := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		out = append(out, fe.Field)
	}
	return out
}

// SchemaLoadError means the schema itself is missing or does not compile.
type SchemaLoadError struct {
	Name  string
	Cause error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("schema %q unavailable: %v", e.Name, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error { return e.Cause }

type compiled struct {
	once   sync.Once
	schema *gojsonschema.Schema
	err    error
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*compiled{}
)

// Load returns the raw text of an embedded schema by name.
func Load(name string) (string, error) {
	data, err := schemaFiles.ReadFile(name + ".schema.json")
	if err != nil {
		return "", &SchemaLoadError{Name: name, Cause: err}
	}
	return string(data), nil
}

// schemaFor compiles an embedded schema on first use.
func schemaFor(name string) (*gojsonschema.Schema, error) {
	cacheMu.Lock()
	c, ok := cache[name]
	if !ok {
		c = &compiled{}
		cache[name] = c
	}
	cacheMu.Unlock()

	c.once.Do(func() {
		text, err := Load(name)
		if err != nil {
			c.err = err
			return
		}
		c.schema, c.err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(text))
		if c.err != nil {
			c.err = &SchemaLoadError{Name: name, Cause: c.err}
		}
	})
	return c.schema, c.err
}

// Validate checks jsonContent against the embedded schema name.
func Validate(name, jsonContent string) error {
	schema, err := schemaFor(name)
	if err != nil {
		return err
	}
	return check(schema, jsonContent)
}

// ValidateJSONString checks jsonContent against an ad hoc schema. The
// schema is compiled on every call.
func ValidateJSONString(schemaContent, jsonContent string) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaContent))
	if err != nil {
		return &SchemaLoadError{Name: "(inline)", Cause: err}
	}
	return check(schema, jsonContent)
}

func check(schema *gojsonschema.Schema, jsonContent string) error {
	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "not valid JSON: " + err.Error()}}}
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}
