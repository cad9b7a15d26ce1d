package parsing

import "fmt"

// Job analysis can fail at three stages: reaching the model, reading its
// output, and checking the decoded profile. Each stage has its own type so
// callers can tell them apart with errors.As.

func stageMessage(stage, detail string, cause error) string {
	if cause == nil {
		return "job analysis: " + stage + ": " + detail
	}
	return fmt.Sprintf("job analysis: %s: %s: %v", stage, detail, cause)
}

// APICallError means the model could not be asked or did not answer.
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string { return stageMessage("model call", e.Message, e.Cause) }
func (e *APICallError) Unwrap() error { return e.Cause }

// ParseError means the model answered with something that is not a
// readable profile object.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string { return stageMessage("unreadable output", e.Message, e.Cause) }
func (e *ParseError) Unwrap() error { return e.Cause }

// ValidationError means the decoded profile broke the profile schema.
// Field names the offending part of the profile when known.
type ValidationError struct {
	Message string
	Field   string
	Cause   error
}

func (e *ValidationError) Error() string {
	stage := "invalid profile"
	if e.Field != "" {
		stage += " (" + e.Field + ")"
	}
	return stageMessage(stage, e.Message, e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }
