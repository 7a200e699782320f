package renderer

import (
	"errors"
	"fmt"

	"github.com/mbolis/recruit/model"
)

var (
	// ErrUnauthorized means the bearer token was rejected. It ends the session:
	// the caller has to log in again.
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUnknownQuestion = errors.New("unknown question")
	ErrAlreadyApplied  = errors.New("you have already applied to this form")
	ErrNotReady        = errors.New("form is not ready for submission")
)

const (
	MissingRequiredMessage = "Please fill all required fields"
	SubmitFailedMessage    = "Failed to submit application"
)

// NotFoundError is returned when a form does not exist or is not published.
type NotFoundError struct {
	FormID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("form %d not found", e.FormID)
}

// ValidationError is a local, pre-submit failure. It never reaches the network.
type ValidationError struct {
	Message string
	Missing []model.Question
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SubmissionError wraps a failed submit. Message is safe to show to the user.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// userMessager is implemented by collaborator errors that carry a message
// meant for the end user, such as API error bodies.
type userMessager interface {
	UserMessage() string
}

func submissionError(err error) *SubmissionError {
	msg := SubmitFailedMessage
	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		msg = um.UserMessage()
	}
	return &SubmissionError{Message: msg, Err: err}
}
