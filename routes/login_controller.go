package routes

import (
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"github.com/mbolis/recruit/app"
	"github.com/mbolis/recruit/database"
	"github.com/mbolis/recruit/httpx"
	"github.com/mbolis/recruit/log"
	"github.com/mbolis/recruit/model"
	"github.com/mbolis/recruit/routes/middlewares"
)

var (
	reEmail   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	reLetter  = regexp.MustCompile(`[a-zA-Z]`)
	reRefresh = regexp.MustCompile(`(?i)^refresh\s+(.*)`)
)

type registerRequest struct {
	Name     string     `json:"user_name"`
	Email    string     `json:"user_email"`
	Password string     `json:"user_password"`
	Role     model.Role `json:"user_role"`
}

func Register(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := registerRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogJSONStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		req.Name = httpx.Sanitize(req.Name)
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		req.Password = strings.TrimSpace(req.Password)
		if req.Role == "" {
			req.Role = model.RoleStudent
		}

		switch {
		case req.Name == "" || req.Email == "" || req.Password == "":
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "register.validate", "All fields are required")
			return
		case !reEmail.MatchString(req.Email):
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "register.validate", "Invalid email format")
			return
		case len(req.Password) < 6:
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "register.validate", "Password must be at least 6 characters long")
			return
		case !reLetter.MatchString(req.Password):
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "register.validate", "Password must contain at least one letter")
			return
		case req.Role != model.RoleStudent && req.Role != model.RoleSocietyHead:
			httpx.LogJSONStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "register.validate", "Invalid user role")
			return
		}

		user, err := database.CreateUser(r.Context(), app.DB, model.User{
			Name:  req.Name,
			Email: req.Email,
			Role:  req.Role,
		}, req.Password)
		if database.IsConflict(err) {
			httpx.LogJSONStatusMsg(w, r, http.StatusConflict, log.DebugLevel, "register.duplicate", "Email already registered")
			return
		}
		if err != nil {
			httpx.LogJSONError(w, r, "db.insert_user", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"message": "Registration successful",
			"user":    user,
		})
	}
}

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogJSONStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		body := url.Values{
			"grant_type": {"password"},
			"username":   {strings.ToLower(strings.TrimSpace(user))},
			"password":   {pass},
		}
		r.Body = io.NopCloser(strings.NewReader(body.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		r.Header.Set("content-length", strconv.Itoa(len(body.Encode())))
		app.UserCredentials(w, r)
	}
}

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("authorization")
		match := reRefresh.FindStringSubmatch(auth)
		if len(match) == 0 {
			httpx.LogJSONStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}
		token := match[1]

		body := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {token},
		}

		req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, "/", strings.NewReader(body.Encode()))
		if err != nil {
			httpx.LogInternalError(w, "refresh.new_request", err)
			return
		}
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
		req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		resp.Flush(w)
	}
}

func Profile(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middlewares.CurrentUser(r)

		user, err := database.UserByID(r.Context(), app.DB, p.UserID)
		if err != nil {
			httpx.LogJSONError(w, r, "db.get_user", err)
			return
		}

		resp := map[string]any{"user": user}
		if user.Role == model.RoleSocietyHead {
			society, err := database.SocietyByHead(r.Context(), app.DB, user.ID)
			switch {
			case err == nil:
				resp["society"] = society
			case !database.IsNotFound(err):
				httpx.LogJSONError(w, r, "db.get_society_by_head", err)
				return
			}
		}
		render.JSON(w, r, resp)
	}
}
