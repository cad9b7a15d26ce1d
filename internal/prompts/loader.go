// Package prompts holds the model prompt templates. Each JSON file maps a
// prompt key to its template text and is embedded in the binary.
package prompts

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// ErrMissing is returned when a file or key does not exist.
var ErrMissing = errors.New("prompt missing")

var (
	filesMu sync.RWMutex
	files   = map[string]map[string]string{}
)

// {{.Name}} style placeholders.
var placeholderRe = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9]*)\}\}`)

// Get returns the template stored under key in file, e.g.
// Get("generation.json", "behavioral").
func Get(file, key string) (string, error) {
	templates, err := templatesIn(file)
	if err != nil {
		return "", err
	}
	t, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("%w: %s has no key %q", ErrMissing, file, key)
	}
	return t, nil
}

// MustGet is Get for templates the program cannot run without.
func MustGet(file, key string) string {
	t, err := Get(file, key)
	if err != nil {
		panic(err)
	}
	return t
}

// Format substitutes {{.Key}} placeholders from data in a single pass.
// Unknown placeholders stay as they are.
func Format(template string, data map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		if v, ok := data[m[3:len(m)-2]]; ok {
			return v
		}
		return m
	})
}

// Render is Get followed by Format.
func Render(file, key string, data map[string]string) (string, error) {
	t, err := Get(file, key)
	if err != nil {
		return "", err
	}
	return Format(t, data), nil
}

// Placeholders lists the distinct placeholder names in template, sorted.
func Placeholders(template string) []string {
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// LoadJSON decodes an embedded file that is not a flat key to template map.
func LoadJSON(file string, v any) error {
	data, err := promptFiles.ReadFile(file)
	if err != nil {
		return fmt.Errorf("%w: %s is not embedded", ErrMissing, file)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("prompt file %s: %w", file, err)
	}
	return nil
}

// List returns the keys defined in file, sorted.
func List(file string) ([]string, error) {
	templates, err := templatesIn(file)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Join puts blank lines between the non-empty sections.
func Join(sections ...string) string {
	var kept []string
	for _, s := range sections {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "\n\n")
}

// ClearCache drops the parsed files so tests start clean.
func ClearCache() {
	filesMu.Lock()
	files = map[string]map[string]string{}
	filesMu.Unlock()
}

func templatesIn(file string) (map[string]string, error) {
	filesMu.RLock()
	templates, ok := files[file]
	filesMu.RUnlock()
	if ok {
		return templates, nil
	}

	if err := LoadJSON(file, &templates); err != nil {
		return nil, err
	}
	filesMu.Lock()
	files[file] = templates
	filesMu.Unlock()
	return templates, nil
}
