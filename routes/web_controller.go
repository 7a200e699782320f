package routes

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"

	"github.com/mbolis/recruit/app"
	"github.com/mbolis/recruit/database"
	"github.com/mbolis/recruit/httpx"
	"github.com/mbolis/recruit/log"
	"github.com/mbolis/recruit/model"
	"github.com/mbolis/recruit/renderer"
	"github.com/mbolis/recruit/routes/middlewares"
	"github.com/mbolis/recruit/web"
)

var uploadExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".pdf", ".doc", ".docx"}

func LoginPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		web.RenderLogin(w, http.StatusOK, web.LoginPage{Goto: r.URL.Query().Get("goto")})
	}
}

func LoginSubmit(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseForm()
		if err != nil {
			log.Debugf("request.parse_form: %s", err)
			web.Fail(w, http.StatusBadRequest, "Malformed login request")
			return
		}
		page := web.LoginPage{
			Email: strings.ToLower(strings.TrimSpace(r.PostForm.Get("email"))),
			Goto:  r.PostForm.Get("goto"),
		}

		tokens, status, err := middlewares.PasswordTokens(app.BearerServer, page.Email, r.PostForm.Get("password"))
		if err != nil {
			httpx.LogInternalError(w, "login.grant", err)
			return
		}
		if status != http.StatusOK {
			log.Debugf("login.grant: status %d for %s", status, page.Email)
			page.Error = "Invalid credentials"
			web.RenderLogin(w, http.StatusUnauthorized, page)
			return
		}

		middlewares.SetTokenCookies(w, tokens)
		http.Redirect(w, r, safeRedirect(page.Goto), http.StatusSeeOther)
	}
}

func Logout(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middlewares.ClearTokenCookies(w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

// safeRedirect keeps post-login redirects on this site.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}

func applySession(w http.ResponseWriter, r *http.Request, app app.App) (*renderer.Session, bool) {
	formID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		web.Fail(w, http.StatusBadRequest, "Invalid form id")
		return nil, false
	}

	p, _ := middlewares.CurrentUser(r)
	session := renderer.NewSession(formService{db: app.DB, userID: p.UserID})
	err = session.Load(r.Context(), formID)
	var nf *renderer.NotFoundError
	switch {
	case errors.As(err, &nf):
		log.Debugf("apply.load: %s", err)
		web.Fail(w, http.StatusNotFound, "This form does not exist or is no longer accepting applications.")
		return nil, false
	case err != nil:
		log.Errorf("apply.load: %s", err)
		web.Fail(w, http.StatusInternalServerError, "The form could not be loaded.")
		return nil, false
	}
	return session, true
}

func applyPage(session *renderer.Session) web.ApplyPage {
	return web.ApplyPage{
		Form:           session.Form(),
		Fields:         session.Fields(),
		AlreadyApplied: session.AlreadyApplied(),
		Accept:         strings.Join(uploadExtensions, ","),
	}
}

func ApplyPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := applySession(w, r, app)
		if !ok {
			return
		}
		web.RenderApply(w, http.StatusOK, applyPage(session))
	}
}

// ApplySubmit reads the multipart form, stores uploaded files and submits the
// answers through a renderer session, so the page follows the same rules as
// every other client.
func ApplySubmit(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middlewares.CurrentUser(r)
		if p.Role != model.RoleStudent {
			web.Fail(w, http.StatusForbidden, "Only students can apply to societies.")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, app.Config.MaxUpload)
		err := r.ParseMultipartForm(8 << 20)
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			log.Debugf("apply.parse_form: %s", err)
			web.Fail(w, http.StatusRequestEntityTooLarge, "The uploaded files are too large.")
			return
		case err != nil && !errors.Is(err, http.ErrNotMultipart):
			log.Debugf("apply.parse_form: %s", err)
			web.Fail(w, http.StatusBadRequest, "Malformed application.")
			return
		}
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}

		session, ok := applySession(w, r, app)
		if !ok {
			return
		}
		if session.AlreadyApplied() {
			web.RenderApply(w, http.StatusConflict, applyPage(session))
			return
		}

		files := map[int]*multipart.FileHeader{}
		for _, q := range session.Form().Questions {
			name := renderer.InputName(q.ID)
			ctl := renderer.ControlFor(q.Type)

			var value string
			switch {
			case ctl.Multiple():
				value = renderer.JoinChoices(r.PostForm[name])
			case ctl.InputType == "file":
				if r.MultipartForm != nil && len(r.MultipartForm.File[name]) > 0 {
					files[q.ID] = r.MultipartForm.File[name][0]
					value = files[q.ID].Filename
				}
			default:
				value = r.PostForm.Get(name)
			}
			if err := session.SetResponse(q.ID, value); err != nil {
				applyFailed(w, session, err)
				return
			}
		}

		// files are written only once the answers are known to be complete
		var stored []string
		if err := session.ValidateRequired(); err == nil {
			for id, fh := range files {
				name, err := saveUpload(app.Config.UploadDir, fh)
				if err == nil {
					stored = append(stored, name)
					err = session.SetResponse(id, name)
				}
				if err != nil {
					removeUploads(app.Config.UploadDir, stored)
					applyFailed(w, session, err)
					return
				}
			}
		}

		application, err := session.Submit(r.Context())
		if err != nil {
			removeUploads(app.Config.UploadDir, stored)
			applyFailed(w, session, err)
			return
		}
		http.Redirect(w, r, "/applied?id="+strconv.Itoa(application.ID), http.StatusSeeOther)
	}
}

// applyFailed re-renders the form with the entered answers and the reason the
// submission was refused.
func applyFailed(w http.ResponseWriter, session *renderer.Session, err error) {
	page := applyPage(session)
	status := http.StatusBadRequest

	var (
		verr *renderer.ValidationError
		serr *renderer.SubmissionError
		herr *httpx.StatusError
	)
	switch {
	case errors.As(err, &verr):
		page.Error = verr.Message
		for _, q := range verr.Missing {
			page.Details = append(page.Details, q.Text+" is required")
		}
	case errors.Is(err, renderer.ErrAlreadyApplied):
		status = http.StatusConflict
		page.AlreadyApplied = true
	case errors.As(err, &serr):
		page.Error = serr.Message
		if errors.As(err, &herr) {
			status = herr.Status
			if details, ok := herr.Err.(interface{ WrappedErrors() []error }); ok {
				for _, e := range details.WrappedErrors() {
					page.Details = append(page.Details, e.Error())
				}
			}
		} else {
			status = http.StatusInternalServerError
		}
		if status == http.StatusConflict {
			page.AlreadyApplied = true
		}
	case errors.As(err, &herr):
		page.Error = herr.Message
		status = herr.Status
	default:
		page.Error = renderer.SubmitFailedMessage
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		log.Errorf("apply.submit: %s", err)
	} else {
		log.Debugf("apply.submit: %s", err)
	}
	web.RenderApply(w, status, page)
}

// removeUploads deletes files stored for a submission that did not go through.
func removeUploads(dir string, names []string) {
	for _, name := range names {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			log.Warnf("apply.remove_upload: %s", err)
		}
	}
}

// saveUpload stores fh under dir with a random name, keeping the extension.
func saveUpload(dir string, fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	allowed := false
	for _, e := range uploadExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", httpx.NewStatusError(http.StatusBadRequest, "File type %q is not allowed", ext)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	name := id.String() + ext

	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(filepath.Join(dir, name))
		return "", err
	}
	return name, nil
}

func AppliedPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applicationID, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil {
			web.Fail(w, http.StatusBadRequest, "Invalid application id")
			return
		}

		application, err := database.ApplicationByID(r.Context(), app.DB, applicationID)
		p, _ := middlewares.CurrentUser(r)
		if database.IsNotFound(err) || (err == nil && application.UserID != p.UserID) {
			web.Fail(w, http.StatusNotFound, "Application not found.")
			return
		}
		if err != nil {
			log.Errorf("db.get_application: %s", err)
			web.Fail(w, http.StatusInternalServerError, "The application could not be loaded.")
			return
		}

		web.RenderApplied(w, web.AppliedPage{
			SocietyName: application.SocietyName,
			FormTitle:   application.FormTitle,
		})
	}
}

func serveUploads(dir string) http.Handler {
	return http.StripPrefix("/uploads", http.FileServer(http.Dir(dir)))
}
