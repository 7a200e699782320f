package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbolis/recruit/app"
	"github.com/mbolis/recruit/model"
	"github.com/mbolis/recruit/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.RequestID, middlewares.RequestLogger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	root.Get("/login", LoginPage(app))
	root.Post("/login", LoginSubmit(app))
	root.Get("/logout", Logout(app))

	root.Group(func(r chi.Router) {
		r.Use(middlewares.CookieAuth(app.BearerServer, app.Config.TokenSecret))

		r.Get(`/apply/{id:^\d+$}`, ApplyPage(app))
		r.Post(`/apply/{id:^\d+$}`, ApplySubmit(app))
		r.Get("/applied", AppliedPage(app))

		r.
			With(middlewares.RequireRole(model.RoleSocietyHead, model.RoleAdmin)).
			Mount("/uploads", serveUploads(app.Config.UploadDir))
	})

	root.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()
	authenticated := middlewares.Authenticated(app.Config.TokenSecret)
	heads := middlewares.RequireRole(model.RoleSocietyHead, model.RoleAdmin)

	api.Route("/auth", func(r chi.Router) {
		r.Post("/register", Register(app))
		r.Post("/login", Login(app))
		r.Post("/refresh", Refresh(app))
		r.With(authenticated).Get("/profile", Profile(app))
	})

	api.Route("/societies", func(r chi.Router) {
		r.Get("/", ListSocieties(app))
		r.Get(`/{id:^\d+$}`, GetSociety(app))

		r.With(authenticated, middlewares.RequireRole(model.RoleSocietyHead)).Get("/mine", MySociety(app))
		r.With(authenticated, heads).Put(`/{id:^\d+$}`, UpdateSociety(app))
	})

	api.Route("/forms", func(r chi.Router) {
		r.Get("/published", ListPublishedForms(app))
		r.Get(`/{id:^\d+$}`, GetPublishedForm(app))

		r.Group(func(r chi.Router) {
			r.Use(authenticated, heads)

			// CRUD form
			r.Post("/", CreateForm(app))
			r.Put(`/{id:^\d+$}`, UpdateForm(app))
			r.Delete(`/{id:^\d+$}`, DeleteForm(app))
			r.Get(`/{id:^\d+$}/manage`, ManageForm(app))
			r.Get(`/society/{id:^\d+$}`, ListSocietyForms(app))
		})
	})

	api.Route("/applications", func(r chi.Router) {
		r.Use(authenticated)

		r.With(middlewares.RequireRole(model.RoleStudent)).Post("/", SubmitApplication(app))
		r.With(middlewares.RequireRole(model.RoleStudent)).Get("/my-applications", MyApplications(app))
		r.Get(`/{id:^\d+$}`, GetApplication(app))

		r.Group(func(r chi.Router) {
			r.Use(heads)

			r.Put(`/{id:^\d+$}/status`, UpdateApplicationStatus(app))
			r.Get(`/society/{id:^\d+$}`, ListSocietyApplications(app))
			r.Get(`/form/{id:^\d+$}`, ListFormApplications(app))
			r.Get(`/statistics/{id:^\d+$}`, SocietyStatistics(app))
		})
	})

	api.Route("/admin", func(r chi.Router) {
		r.Use(authenticated, middlewares.RequireRole(model.RoleAdmin))

		r.Get("/users", AdminListUsers(app))
		r.Get("/societies", AdminListSocieties(app))
		r.Post("/societies", AdminCreateSociety(app))
		r.Put(`/societies/{id:^\d+$}/approve`, ApproveSociety(app))
		r.Get("/dashboard/stats", DashboardStats(app))
		r.Get("/applications", AdminListApplications(app))
	})

	return api
}
