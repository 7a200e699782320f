package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/mbolis/recruit/app"
	"github.com/mbolis/recruit/database"
	"github.com/mbolis/recruit/httpx"
	"github.com/mbolis/recruit/model"
)

const (
	societiesPerPage    = 12
	formsPerPage        = 10
	applicationsPerPage = 20
)

func ListSocieties(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage := httpx.Page(r, societiesPerPage)

		filter := database.SocietyFilter{Category: r.URL.Query().Get("category")}
		if v := r.URL.Query().Get("admission_open"); v != "" {
			if open, err := strconv.ParseBool(v); err == nil {
				filter.AdmissionOpen = &open
			}
		}

		societies, pagination, err := database.ListSocieties(r.Context(), app.DB, filter, page, perPage)
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

func GetSociety(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		societyID, ok := urlID(w, r)
		if !ok {
			return
		}

		society, err := database.SocietyByID(r.Context(), app.DB, societyID)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_society", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"society": society,
		})
	}
}

func ListPublishedForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage := httpx.Page(r, formsPerPage)

		forms, pagination, err := database.ListPublishedForms(r.Context(), app.DB, page, perPage)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_published_forms", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms":      forms,
			"pagination": pagination,
		})
	}
}

// GetPublishedForm serves a form to applicants. Drafts are indistinguishable
// from missing forms.
func GetPublishedForm(app app.App) http.HandlerFunc {
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
		if form.Status != model.FormPublished {
			httpx.LogJSONError(w, r, "get_form.draft", database.ErrNotFound)
			return
		}

		render.JSON(w, r, form)
	}
}
