package todo

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed tasks.schema.json
var schemaJSON string

const schemaURL = "tasks.schema.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Schema returns the embedded payload schema source.
func Schema() string {
	return schemaJSON
}

func payloadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
	})
	return compiled, compileErr
}

// ValidationResult contains validation results. Errors make the payload
// unreadable; Warnings describe records that load but break an invariant.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool // true if JSON Schema validation was performed
}

// Err joins all validation errors, or returns nil when the payload is valid.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return errors.Join(r.Errors...)
}

// taskFields are the keys a stored record is written with.
var taskFields = map[string]bool{"id": true, "text": true, "category": true, "completed": true}

// Validate checks a stored payload. Only malformed JSON, a wrong shape or
// wrong field types make it invalid. Empty text, unknown categories, bad or
// duplicate ids and extra fields are reported as warnings.
func Validate(data []byte) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Err: fmt.Errorf("parse payload: %w", err),
		})
		return result
	}

	schema, err := payloadSchema()
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("invalid schema: %v", err))
	} else {
		result.UsedSchema = true
		if err := schema.Validate(doc); err != nil {
			result.Valid = false
			appendSchemaErrors(result, err)
			return result
		}
	}

	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Err: fmt.Errorf("decode payload: %w", err),
		})
		return result
	}

	if records, ok := doc.([]interface{}); ok {
		for i, rec := range records {
			fields, _ := rec.(map[string]interface{})
			for _, name := range sortedKeys(fields) {
				if !taskFields[name] {
					result.Warnings = append(result.Warnings, fmt.Sprintf("[%d].%s: unknown field, dropped on next save", i, name))
				}
			}
		}
	}
	for _, err := range c.Validate() {
		result.Warnings = append(result.Warnings, err.Error())
	}
	return result
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decode parses a stored payload. Records that only raise warnings are
// kept as stored.
func Decode(data []byte) (Collection, error) {
	if err := Validate(data).Err(); err != nil {
		return nil, err
	}
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if c == nil {
		c = Collection{}
	}
	return c, nil
}

// Encode serializes a collection with 2-space indentation and a trailing newline.
func Encode(c Collection) ([]byte, error) {
	if c == nil {
		c = Collection{}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return append(data, '\n'), nil
}

func appendSchemaErrors(result *ValidationResult, err error) {
	if err == nil {
		return
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}

	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// jsonPointerToPath turns "/0/text" into "[0].text".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
