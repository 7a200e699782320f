// Package web renders the server-side pages: login, the application form and
// its outcome.
package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/mbolis/recruit/log"
	"github.com/mbolis/recruit/model"
	"github.com/mbolis/recruit/renderer"
)

var pages = map[string]*template.Template{
	"apply":   parse(Apply),
	"applied": parse(Applied),
	"login":   parse(Login),
	"fail":    parse(FailPage),
}

func parse(content string) *template.Template {
	tmpl := template.Must(template.New("page").Parse(Layout))
	return template.Must(tmpl.Parse(content))
}

// ApplyPage is the data of the application form.
type ApplyPage struct {
	Form           *model.Form
	Fields         []renderer.FieldView
	AlreadyApplied bool
	Error          string
	Details        []string
	Accept         string
}

type AppliedPage struct {
	SocietyName string
	FormTitle   string
}

type LoginPage struct {
	Email string
	Goto  string
	Error string
}

// render executes a page into a buffer first, so a template error still
// yields a clean 500.
func render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Errorf("web.render.%s: %s", page, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Debugf("web.render.%s.write: %s", page, err)
	}
}

func RenderApply(w http.ResponseWriter, status int, data ApplyPage) {
	render(w, status, "apply", data)
}

func RenderApplied(w http.ResponseWriter, data AppliedPage) {
	render(w, http.StatusOK, "applied", data)
}

func RenderLogin(w http.ResponseWriter, status int, data LoginPage) {
	render(w, status, "login", data)
}

// Fail renders an error page with the given message and status code.
func Fail(w http.ResponseWriter, status int, message string) {
	render(w, status, "fail", struct {
		StatusCode int
		StatusText string
		Message    string
	}{
		status,
		http.StatusText(status),
		message,
	})
}
