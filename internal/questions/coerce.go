package questions

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/interview-prep/internal/llm"
)

// modelQuestion is one question as the model described it, after coercing
// loosely typed fields.
type modelQuestion struct {
	Question    string
	Answer      string
	SourceURL   string
	SourceIndex int
	Difficulty  string
}

// parseQuestions recovers a question list from model output. Fields are
// read leniently: numbers may arrive as strings, and an answer may be a
// list of points or a STAR object instead of prose.
func parseQuestions(raw string) ([]modelQuestion, error) {
	items, err := llm.ParseArray(raw)
	if err != nil {
		return nil, err
	}
	out := make([]modelQuestion, 0, len(items))
	for _, m := range items {
		out = append(out, modelQuestion{
			Question:    flatten(m["question"]),
			Answer:      flatten(m["answer"]),
			SourceURL:   flatten(m["source_url"]),
			SourceIndex: toInt(m["source_index"]),
			Difficulty:  flatten(m["difficulty"]),
		})
	}
	return out, nil
}

// STAR parts come first, in story order.
var starOrder = []string{"situation", "task", "action", "result"}

// flatten renders any JSON value as text. Lists become one line per item
// and objects become "Label: value" lines.
func flatten(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		lines := make([]string, 0, len(x))
		for _, item := range x {
			if s := flatten(item); s != "" {
				lines = append(lines, s)
			}
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		return flattenObject(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func flattenObject(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ra, rb := starRank(a), starRank(b)
		if ra != rb {
			return ra - rb
		}
		return strings.Compare(a, b)
	})

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		if s := flatten(m[k]); s != "" {
			lines = append(lines, label(k)+": "+s)
		}
	}
	return strings.Join(lines, "\n")
}

func starRank(key string) int {
	if i := slices.Index(starOrder, strings.ToLower(key)); i >= 0 {
		return i
	}
	return len(starOrder)
}

// label turns "key_point" into "Key point".
func label(key string) string {
	key = strings.TrimSpace(strings.ReplaceAll(key, "_", " "))
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return key
	}
	return string(unicode.ToUpper(r)) + key[size:]
}

// toInt reads a number or a numeric string. Anything else is 0.
func toInt(v any) int {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) {
			return int(x)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return n
		}
	}
	return 0
}
