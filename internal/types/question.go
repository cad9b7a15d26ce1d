package types

import (
	"strings"
	"time"
)

// Category groups questions in a result.
type Category string

// Question categories.
const (
	CategoryTechnical       Category = "technical"
	CategoryBehavioral      Category = "behavioral"
	CategorySituational     Category = "situational"
	CategoryCompanySpecific Category = "company_specific"
)

// AllCategories lists categories in the order they appear in results.
var AllCategories = []Category{
	CategoryTechnical,
	CategoryBehavioral,
	CategorySituational,
	CategoryCompanySpecific,
}

// ParseCategory normalizes s into a Category. The second result is false for unknown values.
func ParseCategory(s string) (Category, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.NewReplacer("-", "_", " ", "_").Replace(v)
	if v == "company" {
		v = string(CategoryCompanySpecific)
	}
	for _, c := range AllCategories {
		if Category(v) == c {
			return c, true
		}
	}
	return "", false
}

// QuestionSource records where a question came from.
type QuestionSource string

// Question sources.
const (
	SourceAIGenerated QuestionSource = "ai_generated"
	SourceWebSearch   QuestionSource = "web_search"
)

// Difficulty of a question.
type Difficulty string

// Difficulty levels.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalizes s, defaulting to medium.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "beginner", "basic":
		return DifficultyEasy
	case "hard", "difficult", "advanced", "expert":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// GeneratedQuestion is a single question and model answer.
type GeneratedQuestion struct {
	ID         string         `json:"id"`
	Question   string         `json:"question"`
	Answer     string         `json:"answer"`
	Category   Category       `json:"category"`
	Source     QuestionSource `json:"source"`
	SourceURL  *string        `json:"source_url,omitempty"`
	Company    *string        `json:"company,omitempty"`
	SkillTag   *string        `json:"skill_tag,omitempty"`
	Difficulty Difficulty     `json:"difficulty"`
}

// FavoriteQuestion is a question the user chose to keep.
type FavoriteQuestion struct {
	GeneratedQuestion
	JobDescription string    `json:"job_description"`
	CreatedAt      time.Time `json:"created_at"`
}

// AggregateResult is the full response of one generation run.
type AggregateResult struct {
	JobAnalysis      JobProfile          `json:"job_analysis"`
	Domain           Domain              `json:"domain"`
	DomainCategories []string            `json:"domain_categories"`
	Technical        []GeneratedQuestion `json:"technical"`
	Behavioral       []GeneratedQuestion `json:"behavioral"`
	Situational      []GeneratedQuestion `json:"situational"`
	CompanySpecific  []GeneratedQuestion `json:"company_specific"`
}

// Questions returns the list for category c.
func (r *AggregateResult) Questions(c Category) []GeneratedQuestion {
	switch c {
	case CategoryTechnical:
		return r.Technical
	case CategoryBehavioral:
		return r.Behavioral
	case CategorySituational:
		return r.Situational
	case CategoryCompanySpecific:
		return r.CompanySpecific
	}
	return nil
}

// Total is the number of questions across all categories.
func (r *AggregateResult) Total() int {
	return len(r.Technical) + len(r.Behavioral) + len(r.Situational) + len(r.CompanySpecific)
}

// LoadMoreResult is the response of a load-more request.
type LoadMoreResult struct {
	Category  Category            `json:"category"`
	Questions []GeneratedQuestion `json:"questions"`
}

// StringPtr returns a pointer to s, or nil when s is blank.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
