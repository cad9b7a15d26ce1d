package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/interview-prep/internal/fetch"
	"github.com/jonathan/interview-prep/internal/ingestion"
	"github.com/jonathan/interview-prep/internal/pipeline"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates the requested resource does not exist.
type ErrNotFound struct {
	Resource string
}

func (e *ErrNotFound) Error() string {
	return e.Resource + " not found"
}

// validationError converts validator output into an ErrValidation naming
// the first failing field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		return &ErrValidation{Field: jsonField(fe.Field()), Message: msg}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

var fieldNames = map[string]string{
	"JobDescription":    "job_description",
	"Category":          "category",
	"Count":             "count",
	"Question":          "question",
	"Answer":            "answer",
	"Source":            "source",
	"URL":               "url",
	"ExistingQuestions": "existing_questions",
}

func jsonField(name string) string {
	if v, ok := fieldNames[name]; ok {
		return v
	}
	return name
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Pipeline composition failures and unknown errors are 500.
func HTTPStatus(err error) int {
	var (
		validation  *ErrValidation
		notFound    *ErrNotFound
		unsupported *ingestion.UnsupportedTypeError
		tooLarge    *ingestion.TooLargeError
		category    *pipeline.UnknownCategoryError
		fetchErr    *fetch.Error
		vision      *ingestion.VisionError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &category),
		errors.Is(err, fetch.ErrInvalidURL), errors.Is(err, fetch.ErrBlockedAddress):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ingestion.ErrEmptyText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &fetchErr), errors.As(err, &vision):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text a client may see. Unknown server-side
// failures are hidden; a composition failure is a request-level outcome and
// keeps its description.
func publicMessage(err error) string {
	var composition *pipeline.CompositionError
	if HTTPStatus(err) == http.StatusInternalServerError && !errors.As(err, &composition) {
		return "internal server error"
	}
	return err.Error()
}
