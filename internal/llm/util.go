// Package llm - util.go provides the text-level repairs applied to model output before decoding.
package llm

import (
	"strings"
	"unicode/utf8"
)

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.ContainsAny(firstLine, "{[") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// locateJSON returns the first top-level JSON value opened by open ('[' or '{').
// Brackets inside string literals are ignored. When the value never closes,
// the greedy span from the first open to the last matching close is returned.
func locateJSON(text string, open byte) (string, bool) {
	closeCh := closerFor(open)
	start := strings.IndexByte(text, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				if c != closeCh {
					// mismatched nesting, let the greedy span decide
					return greedySpan(text, start, closeCh)
				}
				return text[start : i+1], true
			}
		}
	}

	return greedySpan(text, start, closeCh)
}

func greedySpan(text string, start int, closeCh byte) (string, bool) {
	end := strings.LastIndexByte(text, closeCh)
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func closerFor(open byte) byte {
	if open == '[' {
		return ']'
	}
	return '}'
}

// stripControlChars drops non-printable characters except newline, carriage return and tab.
func stripControlChars(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if r == utf8.RuneError {
			continue
		}
		if (r < 0x20 && r != '\n' && r != '\r' && r != '\t') || r == 0x7f {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// relaxEscapes rewrites string literals so encoding/json accepts them:
// raw newlines and tabs are escaped and unknown escapes such as \_ or \'
// lose their backslash.
func relaxEscapes(text string) string {
	var sb strings.Builder
	sb.Grow(len(text) + 16)

	inString := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			sb.WriteByte(c)
			continue
		}

		switch c {
		case '"':
			inString = false
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\\':
			if i+1 >= len(text) {
				continue
			}
			next := text[i+1]
			switch next {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				sb.WriteByte(c)
				sb.WriteByte(next)
			case 'u':
				if i+5 < len(text) && isHex(text[i+2:i+6]) {
					sb.WriteString(text[i : i+6])
					i += 4
				} else {
					sb.WriteString(`\\u`)
				}
			default:
				sb.WriteByte(next)
			}
			i++
		default:
			sb.WriteByte(c)
		}
	}

	return sb.String()
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// removeTrailingCommas deletes commas that directly precede a closing bracket.
func removeTrailingCommas(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			sb.WriteByte(c)
			continue
		}
		if c == '"' {
			inString = true
			sb.WriteByte(c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(text) && isSpace(text[j]) {
				j++
			}
			if j < len(text) && (text[j] == ']' || text[j] == '}') {
				continue
			}
		}
		sb.WriteByte(c)
	}

	return sb.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}
