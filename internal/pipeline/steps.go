package pipeline

// Step names reported in progress events.
const (
	StepAnalyze         = "analyze_job"
	StepClassify        = "classify_domain"
	StepSkillEvidence   = "skill_evidence"
	StepCompanyEvidence = "company_evidence"
	StepTechnical       = "technical_questions"
	StepBehavioral      = "behavioral_questions"
	StepSituational     = "situational_questions"
	StepExtractSkill    = "extract_skill_questions"
	StepExtractCompany  = "extract_company_questions"
	StepCompose         = "compose"
)

// Step categories.
const (
	CategoryAnalysis   = "analysis"
	CategoryResearch   = "research"
	CategoryGeneration = "generation"
	CategoryExtraction = "extraction"
	CategoryAssembly   = "assembly"
)

// StepDefinition describes where a step runs and what it waits for.
type StepDefinition struct {
	Name         string
	Category     string
	Stage        int
	Dependencies []string
}

// StepRegistry lists every step of a generation run. Steps in the same
// stage run concurrently.
var StepRegistry = map[string]StepDefinition{
	StepAnalyze:         {Name: StepAnalyze, Category: CategoryAnalysis, Stage: 0},
	StepClassify:        {Name: StepClassify, Category: CategoryAnalysis, Stage: 0, Dependencies: []string{StepAnalyze}},
	StepSkillEvidence:   {Name: StepSkillEvidence, Category: CategoryResearch, Stage: 1, Dependencies: []string{StepAnalyze}},
	StepCompanyEvidence: {Name: StepCompanyEvidence, Category: CategoryResearch, Stage: 1, Dependencies: []string{StepAnalyze}},
	StepTechnical:       {Name: StepTechnical, Category: CategoryGeneration, Stage: 1, Dependencies: []string{StepClassify}},
	StepBehavioral:      {Name: StepBehavioral, Category: CategoryGeneration, Stage: 1, Dependencies: []string{StepAnalyze}},
	StepSituational:     {Name: StepSituational, Category: CategoryGeneration, Stage: 1, Dependencies: []string{StepClassify}},
	StepExtractSkill:    {Name: StepExtractSkill, Category: CategoryExtraction, Stage: 2, Dependencies: []string{StepSkillEvidence}},
	StepExtractCompany:  {Name: StepExtractCompany, Category: CategoryExtraction, Stage: 2, Dependencies: []string{StepCompanyEvidence}},
	StepCompose:         {Name: StepCompose, Category: CategoryAssembly, Stage: 3},
}

// CategoryForStep returns the category of a step, or "" for unknown steps.
func CategoryForStep(step string) string {
	return StepRegistry[step].Category
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	// Count is the number of items the step produced.
	Count      int   `json:"count"`
	DurationMS int64 `json:"duration_ms"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)
