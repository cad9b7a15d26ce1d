// Package llm - parse.go turns free-text model responses into JSON values.
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Shape is the top-level JSON type a caller expects back from the model.
type Shape string

const (
	// ShapeArray expects a JSON array
	ShapeArray Shape = "array"
	// ShapeObject expects a JSON object
	ShapeObject Shape = "object"
)

// ErrMalformedOutput matches any MalformedOutputError via errors.Is.
var ErrMalformedOutput = errors.New("malformed model output")

// Recovery stages reported by MalformedOutputError.
const (
	StageLocate = "locate"
	StageDecode = "decode"
)

// MalformedOutputError is returned when model output could not be recovered
// into the expected shape after every repair attempt.
type MalformedOutputError struct {
	Shape Shape
	Stage string
	Cause error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed %s output (%s): %v", e.Shape, e.Stage, e.Cause)
	}
	return fmt.Sprintf("malformed %s output (%s)", e.Shape, e.Stage)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrMalformedOutput.
func (e *MalformedOutputError) Is(target error) bool {
	return target == ErrMalformedOutput
}

// Recover runs the repair chain over raw and returns JSON text that decodes
// into the requested shape:
//
//  1. strip a surrounding code fence
//  2. take the first top-level bracketed value, dropping any prose
//  3. drop control characters
//  4. relax string escapes and parse; on failure remove trailing commas and parse again
func Recover(raw string, shape Shape) (string, error) {
	text := CleanJSONBlock(raw)

	open := byte('{')
	if shape == ShapeArray {
		open = '['
	}

	// Models in JSON mode often wrap a requested list in an object
	// like {"questions": [...]}.
	if shape == ShapeArray {
		objStart := strings.IndexByte(text, '{')
		arrStart := strings.IndexByte(text, '[')
		if objStart >= 0 && (arrStart < 0 || objStart < arrStart) {
			if wrapped, err := Recover(text, ShapeObject); err == nil {
				if inner, ok := unwrapArray(wrapped); ok {
					return inner, nil
				}
			}
		}
	}

	candidate, ok := locateJSON(text, open)
	if !ok {
		return "", &MalformedOutputError{Shape: shape, Stage: StageLocate}
	}

	candidate = relaxEscapes(stripControlChars(candidate))
	if json.Valid([]byte(candidate)) {
		return candidate, nil
	}

	repaired := removeTrailingCommas(candidate)
	var decoded any
	if err := json.Unmarshal([]byte(repaired), &decoded); err != nil {
		return "", &MalformedOutputError{Shape: shape, Stage: StageDecode, Cause: err}
	}
	return repaired, nil
}

// unwrapArray returns the array-valued field of a JSON object, preferring
// "questions" and then the alphabetically first key.
func unwrapArray(objectText string) (string, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(objectText), &fields); err != nil {
		return "", false
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if _, ok := fields["questions"]; ok {
		keys = append([]string{"questions"}, keys...)
	}

	for _, k := range keys {
		trimmed := strings.TrimSpace(string(fields[k]))
		if strings.HasPrefix(trimmed, "[") {
			return trimmed, true
		}
	}
	return "", false
}

// Parse recovers raw into a generic value: []any for ShapeArray,
// map[string]any for ShapeObject.
func Parse(raw string, shape Shape) (any, error) {
	text, err := Recover(raw, shape)
	if err != nil {
		return nil, err
	}

	if shape == ShapeArray {
		var out []any
		if err := json.Unmarshal([]byte(text), &out); err != nil {
			return nil, &MalformedOutputError{Shape: shape, Stage: StageDecode, Cause: err}
		}
		return out, nil
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, &MalformedOutputError{Shape: shape, Stage: StageDecode, Cause: err}
	}
	return out, nil
}

// ParseArray recovers raw into a list of objects. Non-object elements are skipped.
func ParseArray(raw string) ([]map[string]any, error) {
	v, err := Parse(raw, ShapeArray)
	if err != nil {
		return nil, err
	}
	items := v.([]any)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// ParseObject recovers raw into a single object.
func ParseObject(raw string) (map[string]any, error) {
	v, err := Parse(raw, ShapeObject)
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

// ParseArrayOrEmpty is ParseArray for best-effort callers: failures yield an empty list.
func ParseArrayOrEmpty(raw string) []map[string]any {
	out, err := ParseArray(raw)
	if err != nil {
		return []map[string]any{}
	}
	return out
}

// ParseObjectOrEmpty is ParseObject for best-effort callers: failures yield an empty map.
func ParseObjectOrEmpty(raw string) map[string]any {
	out, err := ParseObject(raw)
	if err != nil {
		return map[string]any{}
	}
	return out
}

// DecodeArray recovers raw and decodes each element into T.
// Elements that do not fit T are dropped rather than failing the batch.
func DecodeArray[T any](raw string) ([]T, error) {
	text, err := Recover(raw, ShapeArray)
	if err != nil {
		return nil, err
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elems); err != nil {
		return nil, &MalformedOutputError{Shape: ShapeArray, Stage: StageDecode, Cause: err}
	}

	out := make([]T, 0, len(elems))
	for _, elem := range elems {
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodeObject recovers raw and decodes it into T.
func DecodeObject[T any](raw string) (*T, error) {
	text, err := Recover(raw, ShapeObject)
	if err != nil {
		return nil, err
	}

	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, &MalformedOutputError{Shape: ShapeObject, Stage: StageDecode, Cause: err}
	}
	return &v, nil
}
