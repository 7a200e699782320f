package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/mbolis/recruit/app"
	"github.com/mbolis/recruit/database"
	"github.com/mbolis/recruit/httpx"
	"github.com/mbolis/recruit/log"
	"github.com/mbolis/recruit/model"
	"github.com/mbolis/recruit/routes/middlewares"
)

func MySociety(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middlewares.CurrentUser(r)

		society, err := database.SocietyByHead(r.Context(), app.DB, p.UserID)
		if database.IsNotFound(err) {
			httpx.LogJSONStatusMsg(w, r, http.StatusNotFound, log.DebugLevel, "db.get_society_by_head", "No society found for this user")
			return
		}
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_society_by_head", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"society": society,
		})
	}
}

type societyRequest struct {
	Name              *string    `json:"society_name"`
	Tagline           *string    `json:"tagline"`
	Description       *string    `json:"description"`
	Category          *string    `json:"category"`
	LogoURL           *string    `json:"logo_url"`
	MemberCount       *int       `json:"member_count"`
	AdmissionOpen     *bool      `json:"admission_open"`
	AdmissionDeadline *time.Time `json:"admission_deadline"`
	HeadID            *int       `json:"society_head_id"`
}

// apply copies the set fields of req onto s, answering 400 itself when one is
// invalid.
func (req societyRequest) apply(w http.ResponseWriter, r *http.Request, s *model.Society) bool {
	if req.Name != nil {
		s.Name = httpx.Sanitize(*req.Name)
		if s.Name == "" {
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "society.validate", "Society name is required")
			return false
		}
	}
	if req.Tagline != nil {
		s.Tagline = httpx.Sanitize(*req.Tagline)
	}
	if req.Description != nil {
		s.Description = httpx.Sanitize(*req.Description)
	}
	if req.Category != nil {
		if _, ok := model.Categories[*req.Category]; !ok {
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "society.validate", "Invalid category")
			return false
		}
		s.Category = *req.Category
	}
	if req.LogoURL != nil {
		s.LogoURL = httpx.Sanitize(*req.LogoURL)
	}
	if req.MemberCount != nil {
		if *req.MemberCount < 0 {
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "society.validate", "Member count cannot be negative")
			return false
		}
		s.MemberCount = *req.MemberCount
	}
	if req.AdmissionOpen != nil {
		s.AdmissionOpen = *req.AdmissionOpen
	}
	if req.AdmissionDeadline != nil {
		s.AdmissionDeadline = req.AdmissionDeadline
	}
	return true
}

func UpdateSociety(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		societyID, ok := urlID(w, r)
		if !ok {
			return
		}

		req := societyRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogJSONStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		society, err := database.SocietyByID(r.Context(), app.DB, societyID)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_society", err)
			return
		}
		if !manageable(w, r, app.DB, societyID) {
			return
		}
		if !req.apply(w, r, &society) {
			return
		}

		err = database.UpdateSociety(r.Context(), app.DB, society)
		if database.IsConflict(err) {
			httpx.LogJSONStatusMsg(w, r, http.StatusConflict, log.DebugLevel, "db.update_society.duplicate", "A society with this name already exists")
			return
		}
		if err != nil {
			httpx.LogJSONError(w, r, "db.update_society", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"message": "Society updated successfully",
			"society": society,
		})
	}
}
