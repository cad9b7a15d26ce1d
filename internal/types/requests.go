package types

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// GenerateRequest asks for a full question set.
type GenerateRequest struct {
	JobDescription string `json:"job_description" validate:"required"`
}

// LoadMoreRequest asks for another batch of one category.
type LoadMoreRequest struct {
	JobDescription    string      `json:"job_description" validate:"required"`
	Category          string      `json:"category" validate:"required,oneof=technical behavioral situational company_specific"`
	ExistingQuestions []string    `json:"existing_questions"`
	JobAnalysis       *JobProfile `json:"job_analysis,omitempty"`
	Count             int         `json:"count,omitempty" validate:"gte=0,lte=10"`
}

// AddFavoriteRequest saves a question to favorites.
type AddFavoriteRequest struct {
	Question       string  `json:"question" validate:"required"`
	Answer         string  `json:"answer" validate:"required"`
	Category       string  `json:"category" validate:"required,oneof=technical behavioral situational company_specific"`
	JobDescription string  `json:"job_description"`
	Source         string  `json:"source,omitempty" validate:"omitempty,oneof=ai_generated web_search"`
	SourceURL      *string `json:"source_url,omitempty"`
	Company        *string `json:"company,omitempty"`
	SkillTag       *string `json:"skill_tag,omitempty"`
	Difficulty     string  `json:"difficulty,omitempty"`
}

// ExtractURLRequest asks for the text of a job posting URL.
type ExtractURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// ExtractTextResponse is returned by the text extraction endpoints.
type ExtractTextResponse struct {
	Text       string `json:"text"`
	Filename   string `json:"filename,omitempty"`
	URL        string `json:"url,omitempty"`
	Characters int    `json:"characters"`
}

// Validate validates the GenerateRequest using the validator.
func (r *GenerateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the LoadMoreRequest using the validator.
func (r *LoadMoreRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the AddFavoriteRequest using the validator.
func (r *AddFavoriteRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the ExtractURLRequest using the validator.
func (r *ExtractURLRequest) Validate() error {
	return validate.Struct(r)
}

// ToFavorite converts the request into an unsaved favorite.
func (r *AddFavoriteRequest) ToFavorite() *FavoriteQuestion {
	category, _ := ParseCategory(r.Category)
	source := QuestionSource(r.Source)
	if source == "" {
		source = SourceAIGenerated
	}
	return &FavoriteQuestion{
		GeneratedQuestion: GeneratedQuestion{
			Question:   r.Question,
			Answer:     r.Answer,
			Category:   category,
			Source:     source,
			SourceURL:  r.SourceURL,
			Company:    r.Company,
			SkillTag:   r.SkillTag,
			Difficulty: ParseDifficulty(r.Difficulty),
		},
		JobDescription: r.JobDescription,
	}
}
