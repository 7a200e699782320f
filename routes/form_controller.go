package routes

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/recruit/app"
	"github.com/mbolis/recruit/database"
	"github.com/mbolis/recruit/formschema"
	"github.com/mbolis/recruit/httpx"
	"github.com/mbolis/recruit/log"
	"github.com/mbolis/recruit/model"
	"github.com/mbolis/recruit/routes/middlewares"
)

// canManage reports whether p may manage the forms and applications of
// societyID: admins manage every society, heads only their own.
func canManage(ctx context.Context, db *sql.DB, p middlewares.Principal, societyID int) (bool, error) {
	if p.Role == model.RoleAdmin {
		return true, nil
	}
	if p.Role != model.RoleSocietyHead {
		return false, nil
	}
	society, err := database.SocietyByHead(ctx, db, p.UserID)
	if database.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return society.ID == societyID, nil
}

// manageable answers the request itself unless p may manage societyID.
func manageable(w http.ResponseWriter, r *http.Request, db *sql.DB, societyID int) bool {
	p, _ := middlewares.CurrentUser(r)
	ok, err := canManage(r.Context(), db, p, societyID)
	if err != nil {
		httpx.LogJSONError(w, r, "db.check_owner", err)
		return false
	}
	if !ok {
		httpx.LogJSONStatusMsg(w, r, http.StatusForbidden, log.DebugLevel, "auth.owner", "You do not manage this society")
		return false
	}
	return true
}

// schemaQuestions validates and normalizes a submitted schema, answering 400
// itself on failure.
func schemaQuestions(w http.ResponseWriter, r *http.Request, schema formschema.Schema) ([]model.Question, bool) {
	schema = schema.Normalize()
	err := schema.Validate()
	var verr *formschema.ValidationError
	if errors.As(err, &verr) {
		httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "form.validate."+string(verr.Reason), verr.Message)
		return nil, false
	}
	if err != nil {
		httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "form.validate", err.Error())
		return nil, false
	}
	return schema.Questions(), true
}

type createFormRequest struct {
	SocietyID int               `json:"society_id"`
	Title     string            `json:"title"`
	Status    model.FormStatus  `json:"status"`
	Fields    formschema.Schema `json:"fields"`
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := createFormRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogJSONStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		p, _ := middlewares.CurrentUser(r)
		if p.Role == model.RoleSocietyHead {
			society, err := database.SocietyByHead(r.Context(), app.DB, p.UserID)
			if database.IsNotFound(err) {
				httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "form.create.no_society", "No society found for this user")
				return
			}
			if err != nil {
				httpx.LogJSONError(w, r, "db.get_society_by_head", err)
				return
			}
			req.SocietyID = society.ID
		}
		if req.SocietyID == 0 {
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "form.create.society", "society_id is required")
			return
		}

		req.Title = httpx.Sanitize(req.Title)
		if req.Title == "" {
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "form.create.title", "Form title is required")
			return
		}
		if req.Status == "" {
			req.Status = model.FormDraft
		}
		if !req.Status.Valid() {
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "form.create.status", "Invalid form status")
			return
		}

		questions, ok := schemaQuestions(w, r, req.Fields)
		if !ok {
			return
		}

		var form model.Form
		err = database.InTx(r.Context(), app.DB, func(tx *sql.Tx) (err error) {
			form, err = database.CreateForm(r.Context(), tx, model.Form{
				SocietyID: req.SocietyID,
				Title:     req.Title,
				Status:    req.Status,
				Questions: questions,
			})
			return
		})
		if err != nil {
			httpx.LogJSONError(w, r, "db.insert_form", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, form)
	}
}

type updateFormRequest struct {
	Version int                `json:"version"`
	Title   *string            `json:"title"`
	Status  *model.FormStatus  `json:"status"`
	Fields  *formschema.Schema `json:"fields"`
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := urlID(w, r)
		if !ok {
			return
		}

		req := updateFormRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogJSONStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		form, err := database.FormByID(r.Context(), app.DB, formID)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_form", err)
			return
		}
		if !manageable(w, r, app.DB, form.SocietyID) {
			return
		}

		update := database.FormUpdate{ID: formID, Version: req.Version}
		if req.Title != nil {
			title := httpx.Sanitize(*req.Title)
			if title == "" {
				httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "form.update.title", "Form title is required")
				return
			}
			update.Title = &title
		}
		if req.Status != nil {
			if !req.Status.Valid() {
				httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "form.update.status", "Invalid form status")
				return
			}
			update.Status = req.Status
		}
		if req.Fields != nil {
			update.Questions, ok = schemaQuestions(w, r, *req.Fields)
			if !ok {
				return
			}
		}

		var version int
		err = database.InTx(r.Context(), app.DB, func(tx *sql.Tx) (err error) {
			version, err = database.UpdateForm(r.Context(), tx, update)
			return
		})
		switch {
		case errors.Is(err, database.ErrFormHasApplications):
			httpx.LogJSONStatusMsg(w, r, http.StatusConflict, log.DebugLevel, "db.update_form.has_applications", "Cannot change the questions of a form that already has applications")
			return
		case database.IsConflict(err):
			httpx.LogJSONStatusMsg(w, r, http.StatusConflict, log.DebugLevel, "db.update_form.verify.conflict", "The form was modified by someone else, reload it and try again")
			return
		case err != nil:
			httpx.LogJSONError(w, r, "db.update_form", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"form_id": formID,
			"version": version,
		})
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := urlID(w, r)
		if !ok {
			return
		}

		form, err := database.FormByID(r.Context(), app.DB, formID)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_form", err)
			return
		}
		if !manageable(w, r, app.DB, form.SocietyID) {
			return
		}

		err = database.DeleteForm(r.Context(), app.DB, formID)
		if err != nil {
			httpx.LogJSONError(w, r, "db.delete_form", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ManageForm serves a form to its owners, drafts included.
func ManageForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := urlID(w, r)
		if !ok {
			return
		}

		form, err := database.FormByID(r.Context(), app.DB, formID)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_form", err)
			return
		}
		if !manageable(w, r, app.DB, form.SocietyID) {
			return
		}

		render.JSON(w, r, map[string]any{
			"form":   form,
			"fields": formschema.FromQuestions(form.Questions),
		})
	}
}

func ListSocietyForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		societyID, ok := urlID(w, r)
		if !ok {
			return
		}
		if !manageable(w, r, app.DB, societyID) {
			return
		}

		forms, err := database.FormsBySociety(r.Context(), app.DB, societyID)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_society_forms", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}
