package routes

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/recruit/app"
	"github.com/mbolis/recruit/database"
	"github.com/mbolis/recruit/httpx"
	"github.com/mbolis/recruit/log"
	"github.com/mbolis/recruit/model"
)

const adminPerPage = 20

func AdminListUsers(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := model.Role(r.URL.Query().Get("role"))
		if role != "" && !role.Valid() {
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.query.role", "Invalid user role")
			return
		}
		page, perPage := httpx.Page(r, adminPerPage)

		users, pagination, err := database.ListUsers(r.Context(), app.DB, role, page, perPage)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_users", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"users":      users,
			"pagination": pagination,
		})
	}
}

func AdminListSocieties(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage := httpx.Page(r, adminPerPage)

		societies, pagination, err := database.ListSocieties(r.Context(), app.DB, database.SocietyFilter{}, page, perPage)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_societies", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"societies":  societies,
			"pagination": pagination,
		})
	}
}

func AdminCreateSociety(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := societyRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogJSONStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if req.Name == nil {
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "society.validate", "Society name is required")
			return
		}

		society := model.Society{Category: "other"}
		if !req.apply(w, r, &society) {
			return
		}

		if req.HeadID != nil {
			head, err := database.UserByID(r.Context(), app.DB, *req.HeadID)
			if database.IsNotFound(err) || (err == nil && head.Role != model.RoleSocietyHead) {
				httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "society.validate.head", "Society head must be a user with the societyHead role")
				return
			}
			if err != nil {
				httpx.LogJSONError(w, r, "db.get_user", err)
				return
			}
			society.HeadID = &head.ID
		}

		society, err = database.CreateSociety(r.Context(), app.DB, society)
		if database.IsConflict(err) {
			httpx.LogJSONStatusMsg(w, r, http.StatusConflict, log.DebugLevel, "db.insert_society.duplicate", "Society already exists or head already leads a society")
			return
		}
		if err != nil {
			httpx.LogJSONError(w, r, "db.insert_society", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"message": "Society created successfully",
			"society": society,
		})
	}
}

type approveRequest struct {
	Approve bool `json:"approve"`
}

// ApproveSociety opens or closes admissions for a society.
func ApproveSociety(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		societyID, ok := urlID(w, r)
		if !ok {
			return
		}

		// an empty body approves
		req := approveRequest{Approve: true}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil && !errors.Is(err, io.EOF) {
			httpx.LogJSONStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = database.SetAdmissionOpen(r.Context(), app.DB, societyID, req.Approve)
		if err != nil {
			httpx.LogJSONError(w, r, "db.approve_society", err)
			return
		}

		msg := "Society approved successfully"
		if !req.Approve {
			msg = "Society admissions closed"
		}
		render.JSON(w, r, map[string]any{
			"message": msg,
		})
	}
}

func DashboardStats(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.Dashboard(r.Context(), app.DB)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_dashboard", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"stats": stats,
		})
	}
}

func AdminListApplications(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, ok := statusFilter(w, r)
		if !ok {
			return
		}
		page, perPage := httpx.Page(r, applicationsPerPage)

		apps, pagination, err := database.ListApplications(r.Context(), app.DB, database.ApplicationFilter{Status: status}, page, perPage)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_applications", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"applications": apps,
			"pagination":   pagination,
		})
	}
}
