// Package renderer turns a published form into an interactive instance:
// it maps each question to a control, collects answers keyed by question id,
// validates required answers and submits them as one application.
package renderer

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/mbolis/recruit/log"
	"github.com/mbolis/recruit/model"
)

// FormService is the collaborator that stores forms and applications.
type FormService interface {
	GetForm(ctx context.Context, formID int) (*model.Form, error)
	SubmitApplication(ctx context.Context, formID int, responses model.Responses) (*model.Application, error)
}

// ApplicationLister is optionally implemented by a FormService to let the
// session detect an earlier application to the same form.
type ApplicationLister interface {
	MyApplications(ctx context.Context) ([]model.Application, error)
}

type State int

const (
	StateLoading State = iota
	StateReady
	StateSubmitting
	StateSubmitted
	StateNotFound
	StateUnauthorized
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateNotFound:
		return "not_found"
	case StateUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// Session is one form instance being filled in.
type Session struct {
	svc FormService

	mu             sync.Mutex
	state          State
	form           *model.Form
	responses      model.Responses
	alreadyApplied bool
	application    *model.Application
}

func NewSession(svc FormService) *Session {
	return &Session{svc: svc, state: StateLoading}
}

// Load fetches the form and starts an empty answer per question. A missing or
// unpublished form leaves the session in StateNotFound for good.
func (s *Session) Load(ctx context.Context, formID int) error {
	s.mu.Lock()
	if s.state != StateLoading {
		s.mu.Unlock()
		return ErrNotReady
	}
	s.mu.Unlock()

	form, err := s.svc.GetForm(ctx, formID)
	if err == nil && form == nil {
		err = &NotFoundError{FormID: formID}
	}
	if err == nil && form.Status != "" && form.Status != model.FormPublished {
		err = &NotFoundError{FormID: formID}
	}

	var applied bool
	if err == nil {
		applied, err = s.findApplication(ctx, formID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var nf *NotFoundError
	switch {
	case errors.As(err, &nf):
		s.state = StateNotFound
		return err
	case errors.Is(err, ErrUnauthorized):
		s.state = StateUnauthorized
		return err
	case err != nil:
		return err
	}

	s.form = form
	s.alreadyApplied = applied
	s.responses = make(model.Responses, len(form.Questions))
	for _, q := range form.Questions {
		s.responses[q.ID] = ""
	}
	s.state = StateReady
	return nil
}

func (s *Session) findApplication(ctx context.Context, formID int) (bool, error) {
	lister, ok := s.svc.(ApplicationLister)
	if !ok {
		return false, nil
	}
	apps, err := lister.MyApplications(ctx)
	if errors.Is(err, ErrUnauthorized) {
		return false, err
	}
	if err != nil {
		log.Debugf("renderer.my_applications: %s", err)
		return false, nil
	}
	for _, app := range apps {
		if app.FormID == formID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submitting reports whether a submit is in flight; UIs disable the submit
// control while it is true.
func (s *Session) Submitting() bool {
	return s.State() == StateSubmitting
}

// AlreadyApplied is true when the applicant's own list already holds an
// application to this form.
func (s *Session) AlreadyApplied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alreadyApplied
}

func (s *Session) Form() *model.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Application is the created application after a successful submit.
func (s *Session) Application() *model.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.application
}

// Responses returns a copy of the current answers.
func (s *Session) Responses() model.Responses {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(model.Responses, len(s.responses))
	for k, v := range s.responses {
		out[k] = v
	}
	return out
}

func (s *Session) Response(questionID int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.responses[questionID]
}

// SetResponse overwrites one answer. Only questions of the loaded form are
// accepted.
func (s *Session) SetResponse(questionID int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotReady
	}
	if _, ok := s.responses[questionID]; !ok {
		return ErrUnknownQuestion
	}
	s.responses[questionID] = value
	return nil
}

// ValidateRequired fails with one aggregate error when any required question
// has a blank answer.
func (s *Session) ValidateRequired() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return ErrNotReady
	}
	return validateRequired(s.form.Questions, s.responses)
}

func validateRequired(questions []model.Question, responses model.Responses) error {
	missing := MissingRequired(questions, responses)
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Message: MissingRequiredMessage, Missing: missing}
}

// MissingRequired lists the required questions whose answer is empty or
// whitespace only, in form order.
func MissingRequired(questions []model.Question, responses model.Responses) []model.Question {
	var missing []model.Question
	for _, q := range questions {
		if q.IsRequired && strings.TrimSpace(responses[q.ID]) == "" {
			missing = append(missing, q)
		}
	}
	return missing
}

// Submit validates and sends every answer as one application. On success the
// session is done and its answers are dropped. A rejected token ends the
// session. On any other failure the session goes back to ready with the
// answers untouched so the user can retry.
func (s *Session) Submit(ctx context.Context) (*model.Application, error) {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return nil, ErrNotReady
	}
	if s.alreadyApplied {
		s.mu.Unlock()
		return nil, ErrAlreadyApplied
	}
	if err := validateRequired(s.form.Questions, s.responses); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	formID := s.form.ID
	payload := make(model.Responses, len(s.responses))
	for k, v := range s.responses {
		payload[k] = v
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	app, err := s.svc.SubmitApplication(ctx, formID, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(err, ErrUnauthorized) {
		s.state = StateUnauthorized
		return nil, err
	}
	if err != nil {
		s.state = StateReady
		return nil, submissionError(err)
	}

	s.state = StateSubmitted
	s.application = app
	s.responses = nil
	return app, nil
}
