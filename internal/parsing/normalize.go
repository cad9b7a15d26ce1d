package parsing

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/interview-prep/internal/types"
)

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"react.js":   "React",
	"reactjs":    "React",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"ms excel":   "Excel",
	"excel":      "Excel",
}

// NormalizeSkillName trims a skill and maps known variants to one spelling.
// Single lower-case words are capitalized; anything else keeps its casing so
// acronyms like SQL or HIPAA survive.
func NormalizeSkillName(skill string) string {
	normalized := strings.Join(strings.Fields(skill), " ")
	if normalized == "" {
		return ""
	}

	if canonical, ok := skillNormalizations[strings.ToLower(normalized)]; ok {
		return canonical
	}

	if normalized == strings.ToLower(normalized) && !strings.Contains(normalized, " ") {
		r, size := utf8.DecodeRuneInString(normalized)
		return string(unicode.ToUpper(r)) + normalized[size:]
	}

	return normalized
}

// NormalizeSkills normalizes each skill and drops blanks and case-insensitive
// duplicates, keeping first-seen order. The result is never nil.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		n := NormalizeSkillName(s)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// seniorityWords are checked in order against whole words of the input, so
// "internal tools" is not an internship. Entries may span several words.
var seniorityWords = []struct {
	level types.Seniority
	words []string
}{
	{types.SeniorityIntern, []string{"intern", "interns", "internship", "internships", "trainee", "trainees", "apprentice"}},
	{types.SeniorityJunior, []string{"junior", "jr", "entry", "graduate", "new grad"}},
	{types.SeniorityPrincipal, []string{"principal", "staff", "distinguished"}},
	{types.SeniorityExecutive, []string{"exec", "executive", "director", "vp", "svp", "evp", "vice president", "chief", "head of"}},
	{types.SeniorityLead, []string{"lead", "leads", "leader", "manager", "managers", "managerial"}},
	{types.SenioritySenior, []string{"senior", "sr"}},
}

// NormalizeSeniority maps free-text seniority onto the fixed levels, defaulting to mid.
func NormalizeSeniority(s string) types.Seniority {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return types.SeniorityMid
	}
	text := " " + strings.Join(words, " ") + " "
	for _, entry := range seniorityWords {
		for _, w := range entry.words {
			if strings.Contains(text, " "+w+" ") {
				return entry.level
			}
		}
	}
	return types.SeniorityMid
}

// normalizeCompany treats blank and placeholder company names as absent.
func normalizeCompany(name *string) *string {
	if name == nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(*name)) {
	case "", "null", "none", "n/a", "na", "unknown", "not specified", "not mentioned", "confidential":
		return nil
	}
	return types.StringPtr(*name)
}

// orDefault returns s trimmed, or def when s is blank.
func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

// TruncateRunes returns at most n runes of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
