package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/mbolis/recruit/app"
	"github.com/mbolis/recruit/database"
	"github.com/mbolis/recruit/httpx"
	"github.com/mbolis/recruit/log"
	"github.com/mbolis/recruit/model"
	"github.com/mbolis/recruit/routes/middlewares"
)

type submitRequest struct {
	FormID    int             `json:"form_id"`
	Responses model.Responses `json:"responses"`
}

func SubmitApplication(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := submitRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogJSONStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if req.FormID == 0 {
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "application.form_id", "Form ID is required")
			return
		}

		p, _ := middlewares.CurrentUser(r)
		application, err := submitApplication(r.Context(), app.DB, p.UserID, req.FormID, req.Responses)
		if err != nil {
			httpx.LogJSONError(w, r, "db.insert_application", err)
			return
		}
		log.WithFields(log.Fields{
			"application_id": application.ID,
			"form_id":        application.FormID,
			"user_id":        p.UserID,
		}).Info("application.submitted")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"message":     "Application submitted successfully",
			"application": application,
		})
	}
}

func MyApplications(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middlewares.CurrentUser(r)
		page, perPage := httpx.Page(r, formsPerPage)

		apps, pagination, err := database.ListApplications(r.Context(), app.DB, database.ApplicationFilter{UserID: p.UserID}, page, perPage)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_my_applications", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"applications": apps,
			"pagination":   pagination,
		})
	}
}

// GetApplication shows one application with its answers to the applicant, the
// head of the society it was sent to, or an admin.
func GetApplication(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applicationID, ok := urlID(w, r)
		if !ok {
			return
		}

		application, err := database.ApplicationByID(r.Context(), app.DB, applicationID)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_application", err)
			return
		}

		p, _ := middlewares.CurrentUser(r)
		if p.Role != model.RoleStudent || application.UserID != p.UserID {
			if !manageable(w, r, app.DB, application.SocietyID) {
				return
			}
		}

		render.JSON(w, r, map[string]any{
			"application": application,
		})
	}
}

type statusRequest struct {
	Status model.Status `json:"status"`
}

func UpdateApplicationStatus(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applicationID, ok := urlID(w, r)
		if !ok {
			return
		}

		req := statusRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogJSONStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		req.Status = model.Status(strings.TrimSpace(string(req.Status)))
		if req.Status == "" {
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "application.status", "Status is required")
			return
		}
		if !req.Status.Valid() {
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "application.status", "Invalid status")
			return
		}

		application, err := database.ApplicationByID(r.Context(), app.DB, applicationID)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_application", err)
			return
		}
		if !manageable(w, r, app.DB, application.SocietyID) {
			return
		}

		err = database.UpdateApplicationStatus(r.Context(), app.DB, applicationID, req.Status)
		if err != nil {
			httpx.LogJSONError(w, r, "db.update_application_status", err)
			return
		}
		application.Status = req.Status

		render.JSON(w, r, map[string]any{
			"message":     "Application status updated successfully",
			"application": application,
		})
	}
}

func statusFilter(w http.ResponseWriter, r *http.Request) (model.Status, bool) {
	status := model.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.query.status", "Invalid status")
		return "", false
	}
	return status, true
}

func ListSocietyApplications(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		societyID, ok := urlID(w, r)
		if !ok {
			return
		}
		status, ok := statusFilter(w, r)
		if !ok {
			return
		}

		_, err := database.SocietyByID(r.Context(), app.DB, societyID)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_society", err)
			return
		}
		if !manageable(w, r, app.DB, societyID) {
			return
		}

		page, perPage := httpx.Page(r, applicationsPerPage)
		apps, pagination, err := database.ListApplications(r.Context(), app.DB, database.ApplicationFilter{SocietyID: societyID, Status: status}, page, perPage)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_society_applications", err)
			return
		}
		stats, err := database.SocietyStatistics(r.Context(), app.DB, societyID)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_statistics", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"applications": apps,
			"statistics":   stats,
			"pagination":   pagination,
		})
	}
}

func ListFormApplications(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := urlID(w, r)
		if !ok {
			return
		}
		status, ok := statusFilter(w, r)
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

		page, perPage := httpx.Page(r, applicationsPerPage)
		apps, pagination, err := database.ListApplications(r.Context(), app.DB, database.ApplicationFilter{FormID: formID, Status: status}, page, perPage)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_form_applications", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"form":         form,
			"applications": apps,
			"pagination":   pagination,
		})
	}
}

func SocietyStatistics(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		societyID, ok := urlID(w, r)
		if !ok {
			return
		}
		if !manageable(w, r, app.DB, societyID) {
			return
		}

		stats, err := database.SocietyStatistics(r.Context(), app.DB, societyID)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_statistics", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"statistics": stats,
		})
	}
}
