package routes

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/mbolis/recruit/database"
	"github.com/mbolis/recruit/httpx"
	"github.com/mbolis/recruit/model"
	"github.com/mbolis/recruit/renderer"
)

// submitApplication stores one application of userID to formID. It enforces
// on the server what the renderer checks on the client: the form must be
// published and open, every answer must belong to one of its questions, and
// every required question must be answered.
func submitApplication(ctx context.Context, db *sql.DB, userID, formID int, responses model.Responses) (app model.Application, err error) {
	err = database.InTx(ctx, db, func(tx *sql.Tx) error {
		form, err := database.FormByID(ctx, tx, formID)
		if err != nil {
			return err
		}
		if form.Status != model.FormPublished {
			return httpx.NewStatusError(http.StatusBadRequest, "This form is not accepting applications")
		}

		society, err := database.SocietyByID(ctx, tx, form.SocietyID)
		if err != nil {
			return err
		}
		if !admissionOpen(society, time.Now()) {
			return httpx.NewStatusError(http.StatusBadRequest, "Society is not accepting applications")
		}

		if err := checkResponses(form.Questions, responses); err != nil {
			return err
		}

		answers := make(model.Responses, len(form.Questions))
		for _, q := range form.Questions {
			answers[q.ID] = responses[q.ID]
		}

		app, err = database.CreateApplication(ctx, tx, model.Application{
			UserID:    userID,
			SocietyID: form.SocietyID,
			FormID:    formID,
		}, httpx.SanitizeResponses(answers))
		if database.IsConflict(err) {
			return &httpx.StatusError{
				Status:  http.StatusConflict,
				Message: "You have already applied to this form",
				Err:     err,
			}
		}
		app.SocietyName = society.Name
		app.FormTitle = form.Title
		return err
	})
	return
}

func admissionOpen(s model.Society, now time.Time) bool {
	if !s.AdmissionOpen {
		return false
	}
	return s.AdmissionDeadline == nil || now.Before(*s.AdmissionDeadline)
}

func checkResponses(questions []model.Question, responses model.Responses) error {
	known := make(map[int]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	var unknown []int
	for id := range responses {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Ints(unknown)
		var merr *multierror.Error
		for _, id := range unknown {
			merr = multierror.Append(merr, fmt.Errorf("question %d is not part of this form", id))
		}
		return &httpx.StatusError{
			Status:  http.StatusBadRequest,
			Message: "Responses reference unknown questions",
			Err:     merr,
		}
	}

	var merr *multierror.Error
	for _, q := range renderer.MissingRequired(questions, responses) {
		merr = multierror.Append(merr, fmt.Errorf("%q is required", q.Text))
	}
	if merr != nil {
		return &httpx.StatusError{
			Status:  http.StatusBadRequest,
			Message: renderer.MissingRequiredMessage,
			Err:     merr,
		}
	}
	return nil
}

// formService backs a renderer.Session with the database, acting as userID.
type formService struct {
	db     *sql.DB
	userID int
}

func (s formService) GetForm(ctx context.Context, formID int) (*model.Form, error) {
	form, err := database.FormByID(ctx, s.db, formID)
	if database.IsNotFound(err) {
		return nil, &renderer.NotFoundError{FormID: formID}
	}
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (s formService) SubmitApplication(ctx context.Context, formID int, responses model.Responses) (*model.Application, error) {
	app, err := submitApplication(ctx, s.db, s.userID, formID, responses)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (s formService) MyApplications(ctx context.Context) ([]model.Application, error) {
	apps, _, err := database.ListApplications(ctx, s.db, database.ApplicationFilter{UserID: s.userID}, 1, 1000)
	return apps, err
}
