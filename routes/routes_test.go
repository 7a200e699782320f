package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/recruit/app"
	"github.com/mbolis/recruit/config"
	"github.com/mbolis/recruit/database"
	"github.com/mbolis/recruit/httpx"
	"github.com/mbolis/recruit/model"
	"github.com/mbolis/recruit/renderer"
)

type testServer struct {
	*httptest.Server
	t   *testing.T
	app app.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	db, err := database.Open(filepath.Join(dir, "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = database.Seed(context.Background(), db)
	require.NoError(t, err)

	cfg := config.Config{
		TokenSecret: "test-secret",
		TokenTTL:    time.Hour,
		UploadDir:   filepath.Join(dir, "uploads"),
		MaxUpload:   16 << 20,
	}
	a := app.App{DB: db, BearerServer: httpx.NewBearerServer(db, cfg), Config: cfg}

	srv := httptest.NewServer(Wire(a))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, t: t, app: a}
}

func (s *testServer) do(method, path, token string, body any) (*http.Response, map[string]any) {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.URL+path, rd)
	require.NoError(s.t, err)
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}
	if token != "" {
		req.Header.Set("authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("content-type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	req, err := http.NewRequest(http.MethodPost, s.URL+"/api/auth/login", nil)
	require.NoError(s.t, err)
	req.SetBasicAuth(email, password)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	require.Equal(s.t, http.StatusOK, resp.StatusCode)

	var tokens map[string]any
	require.NoError(s.t, json.NewDecoder(resp.Body).Decode(&tokens))
	return tokens["access_token"].(string)
}

func (s *testServer) techForm() model.Form {
	s.t.Helper()
	forms, _, err := database.ListPublishedForms(context.Background(), s.app.DB, 1, 10)
	require.NoError(s.t, err)
	require.NotEmpty(s.t, forms)
	f, err := database.FormByID(context.Background(), s.app.DB, forms[0].ID)
	require.NoError(s.t, err)
	return f
}

func fullResponses(f model.Form) map[string]string {
	out := map[string]string{}
	for _, q := range f.Questions {
		switch {
		case q.Type == "select":
			out[fmt.Sprint(q.ID)] = q.OptionList()[0]
		case q.IsRequired:
			out[fmt.Sprint(q.ID)] = "answer"
		}
	}
	return out
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"user_name": "Nia", "user_email": "nia@college.edu", "user_password": "abc123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "student", body["user"].(map[string]any)["user_role"])

	resp, body = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"user_name": "Nia", "user_email": "NIA@college.edu", "user_password": "abc123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Email already registered", body["error"])

	tests := []struct {
		name string
		req  map[string]string
		msg  string
	}{
		{"admin", map[string]string{"user_name": "X", "user_email": "x@college.edu", "user_password": "abc123", "user_role": "admin"}, "Invalid user role"},
		{"short password", map[string]string{"user_name": "X", "user_email": "x@college.edu", "user_password": "a1"}, "Password must be at least 6 characters long"},
		{"digits only", map[string]string{"user_name": "X", "user_email": "x@college.edu", "user_password": "123456"}, "Password must contain at least one letter"},
		{"bad email", map[string]string{"user_name": "X", "user_email": "x@", "user_password": "abc123"}, "Invalid email format"},
		{"missing", map[string]string{"user_email": "x@college.edu", "user_password": "abc123"}, "All fields are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := s.do(http.MethodPost, "/api/auth/register", "", tt.req)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.msg, body["error"])
		})
	}

	token := s.login("nia@college.edu", "abc123")
	resp, body = s.do(http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Nia", body["user"].(map[string]any)["user_name"])
}

func TestStudentApplies(t *testing.T) {
	s := newTestServer(t)
	form := s.techForm()
	token := s.login("student@college.edu", "student123")

	resp, body := s.do(http.MethodGet, fmt.Sprintf("/api/forms/%d", form.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Tech Club", body["society_name"])
	assert.Len(t, body["questions"], len(form.Questions))

	resp, _ = s.do(http.MethodPost, "/api/applications", "", map[string]any{"form_id": form.ID})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = s.do(http.MethodPost, "/api/applications", token, map[string]any{
		"form_id":   form.ID,
		"responses": map[string]string{fmt.Sprint(form.Questions[0].ID): "   "},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, renderer.MissingRequiredMessage, body["error"])

	responses := fullResponses(form)
	responses["99999"] = "stray"
	resp, body = s.do(http.MethodPost, "/api/applications", token, map[string]any{"form_id": form.ID, "responses": responses})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Responses reference unknown questions", body["error"])

	delete(responses, "99999")
	responses[fmt.Sprint(form.Questions[0].ID)] = "<b>Sam</b>"
	resp, body = s.do(http.MethodPost, "/api/applications", token, map[string]any{"form_id": form.ID, "responses": responses})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	application := body["application"].(map[string]any)
	assert.Equal(t, "pending", application["status"])

	resp, body = s.do(http.MethodPost, "/api/applications", token, map[string]any{"form_id": form.ID, "responses": responses})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "You have already applied to this form", body["error"])

	resp, body = s.do(http.MethodGet, "/api/applications/my-applications", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["applications"], 1)
	assert.EqualValues(t, 1, body["pagination"].(map[string]any)["total"])

	resp, body = s.do(http.MethodGet, fmt.Sprintf("/api/applications/%v", application["application_id"]), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	answers := body["application"].(map[string]any)["responses"].([]any)
	assert.Equal(t, "Sam", answers[0].(map[string]any)["response_text"])
}

func TestApplyToClosedSociety(t *testing.T) {
	s := newTestServer(t)
	form := s.techForm()
	require.NoError(t, database.SetAdmissionOpen(context.Background(), s.app.DB, form.SocietyID, false))
	token := s.login("student@college.edu", "student123")

	resp, body := s.do(http.MethodPost, "/api/applications", token, map[string]any{"form_id": form.ID, "responses": fullResponses(form)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Society is not accepting applications", body["error"])

	resp, _ = s.do(http.MethodPost, "/api/applications", token, map[string]any{"form_id": 4242})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHeadManagesForms(t *testing.T) {
	s := newTestServer(t)
	head := s.login("tech.head@college.edu", "head123")
	student := s.login("student@college.edu", "student123")

	resp, _ := s.do(http.MethodPost, "/api/forms", student, map[string]any{"title": "Nope"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(http.MethodPost, "/api/forms", head, map[string]any{"title": "Empty", "fields": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please add at least one form field before creating the form.", body["error"])

	resp, body = s.do(http.MethodPost, "/api/forms", head, map[string]any{
		"title":  "Workshop signup",
		"fields": []map[string]any{{"type": "radio", "label": "Slot"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, `Field "Slot" needs at least one option.`, body["error"])

	resp, body = s.do(http.MethodPost, "/api/forms", head, map[string]any{
		"title":  "Workshop signup",
		"status": "published",
		"fields": []map[string]any{{"type": "select", "label": "Team", "options": []string{"  ", ""}}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, `Field "Team" needs at least one option.`, body["error"])

	resp, body = s.do(http.MethodPost, "/api/forms", head, map[string]any{
		"title": "Workshop signup",
		"fields": []map[string]any{
			{"type": "text", "label": "Full name", "required": true},
			{"type": "radio", "label": "Slot", "options": []string{"Morning", "Evening"}},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	formID := body["form_id"]
	assert.Equal(t, "draft", body["status"])
	questions := body["questions"].([]any)
	assert.Equal(t, "full_name", questions[0].(map[string]any)["name"])
	assert.Equal(t, "Morning,Evening", questions[1].(map[string]any)["options"])

	resp, _ = s.do(http.MethodGet, fmt.Sprintf("/api/forms/%v", formID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = s.do(http.MethodGet, fmt.Sprintf("/api/forms/%v/manage", formID), head, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["fields"], 2)

	other := s.login("drama.head@college.edu", "head123")
	resp, _ = s.do(http.MethodGet, fmt.Sprintf("/api/forms/%v/manage", formID), other, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = s.do(http.MethodPut, fmt.Sprintf("/api/forms/%v", formID), head, map[string]any{"version": 1, "status": "published"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["version"])

	resp, _ = s.do(http.MethodPut, fmt.Sprintf("/api/forms/%v", formID), head, map[string]any{"version": 1, "title": "Stale"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = s.do(http.MethodPut, fmt.Sprintf("/api/forms/%v", formID), head, map[string]any{
		"version": 2,
		"fields":  []map[string]any{{"type": "checkbox", "label": "Days", "options": []string{" "}}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, `Field "Days" needs at least one option.`, body["error"])

	resp, _ = s.do(http.MethodGet, fmt.Sprintf("/api/forms/%v", formID), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.do(http.MethodGet, fmt.Sprintf("/api/forms/society/%v", s.techForm().SocietyID), head, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["forms"], 2)

	resp, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/forms/%v", formID), other, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/forms/%v", formID), head, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHeadReviewsApplications(t *testing.T) {
	s := newTestServer(t)
	form := s.techForm()
	student := s.login("student@college.edu", "student123")
	head := s.login("tech.head@college.edu", "head123")
	other := s.login("drama.head@college.edu", "head123")

	resp, body := s.do(http.MethodPost, "/api/applications", student, map[string]any{"form_id": form.ID, "responses": fullResponses(form)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	appID := body["application"].(map[string]any)["application_id"]

	resp, _ = s.do(http.MethodPut, fmt.Sprintf("/api/forms/%d", form.ID), head, map[string]any{
		"version": form.Version,
		"fields":  []map[string]any{{"type": "text", "label": "Only"}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	statusPath := fmt.Sprintf("/api/applications/%v/status", appID)
	resp, _ = s.do(http.MethodPut, statusPath, student, map[string]string{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = s.do(http.MethodPut, statusPath, other, map[string]string{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, body = s.do(http.MethodPut, statusPath, head, map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid status", body["error"])

	resp, body = s.do(http.MethodPut, statusPath, head, map[string]string{"status": "shortlisted"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "shortlisted", body["application"].(map[string]any)["status"])

	resp, body = s.do(http.MethodGet, fmt.Sprintf("/api/applications/society/%d?status=shortlisted", form.SocietyID), head, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["applications"], 1)
	assert.EqualValues(t, 1, body["statistics"].(map[string]any)["shortlisted"])

	resp, _ = s.do(http.MethodGet, fmt.Sprintf("/api/applications/statistics/%d", form.SocietyID), other, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = s.do(http.MethodGet, fmt.Sprintf("/api/applications/form/%d", form.ID), head, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["applications"], 1)
}

func TestAdmin(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@college.edu", "admin123")
	head := s.login("tech.head@college.edu", "head123")

	resp, _ := s.do(http.MethodGet, "/api/admin/dashboard/stats", head, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(http.MethodGet, "/api/admin/dashboard/stats", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 4, body["stats"].(map[string]any)["total_users"])

	resp, body = s.do(http.MethodGet, "/api/admin/users?role=societyHead", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["users"], 2)

	resp, body = s.do(http.MethodPost, "/api/admin/societies", admin, map[string]any{"society_name": "Chess Club", "category": "other"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	societyID := body["society"].(map[string]any)["society_id"]
	assert.Equal(t, false, body["society"].(map[string]any)["admission_open"])

	resp, _ = s.do(http.MethodPost, "/api/admin/societies", admin, map[string]any{"society_name": "Chess Club"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = s.do(http.MethodPut, fmt.Sprintf("/api/admin/societies/%v/approve", societyID), admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.do(http.MethodGet, fmt.Sprintf("/api/societies/%v", societyID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["society"].(map[string]any)["admission_open"])

	resp, body = s.do(http.MethodGet, "/api/societies?admission_open=true&per_page=1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["societies"], 1)
	assert.EqualValues(t, 2, body["pagination"].(map[string]any)["pages"])
}

func TestHeadUpdatesSociety(t *testing.T) {
	s := newTestServer(t)
	head := s.login("tech.head@college.edu", "head123")

	resp, body := s.do(http.MethodGet, "/api/societies/mine", head, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	society := body["society"].(map[string]any)

	resp, body = s.do(http.MethodPut, fmt.Sprintf("/api/societies/%v", society["society_id"]), head, map[string]any{
		"tagline":  "<i>Ship it</i>",
		"category": "nonsense",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid category", body["error"])

	resp, body = s.do(http.MethodPut, fmt.Sprintf("/api/societies/%v", society["society_id"]), head, map[string]any{
		"tagline":      "<i>Ship it</i>",
		"member_count": 130,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ship it", body["society"].(map[string]any)["tagline"])
	assert.EqualValues(t, 130, body["society"].(map[string]any)["member_count"])
}

func TestRefreshToken(t *testing.T) {
	s := newTestServer(t)
	req, err := http.NewRequest(http.MethodPost, s.URL+"/api/auth/login", nil)
	require.NoError(t, err)
	req.SetBasicAuth("student@college.edu", "student123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var tokens map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tokens))
	resp.Body.Close()

	req, err = http.NewRequest(http.MethodPost, s.URL+"/api/auth/refresh", nil)
	require.NoError(t, err)
	req.Header.Set("authorization", "Refresh "+tokens["refresh_token"].(string))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err = http.NewRequest(http.MethodPost, s.URL+"/api/auth/login", nil)
	require.NoError(t, err)
	req.SetBasicAuth("student@college.edu", "wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func browser(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func multipartBody(t *testing.T, values map[string][]string, files map[string]string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		fw.Write([]byte("%PDF-1.4 test"))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestWebApplyFlow(t *testing.T) {
	s := newTestServer(t)
	form := s.techForm()
	client := browser(t)
	applyURL := fmt.Sprintf("%s/apply/%d", s.URL, form.ID)

	resp, err := client.Get(applyURL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/login?goto=%s", url.QueryEscape(fmt.Sprintf("/apply/%d", form.ID))), resp.Header.Get("location"))

	resp, err = client.PostForm(s.URL+"/login", url.Values{
		"email": {"student@college.edu"}, "password": {"wrong"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = client.PostForm(s.URL+"/login", url.Values{
		"email": {"student@college.edu"}, "password": {"student123"}, "goto": {fmt.Sprintf("/apply/%d", form.ID)},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/apply/%d", form.ID), resp.Header.Get("location"))

	resp, err = client.Get(applyURL)
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), form.Questions[0].Text)

	// name left blank: the page comes back with the other answers kept
	values := map[string][]string{}
	for _, q := range form.Questions[1:] {
		name := renderer.InputName(q.ID)
		switch q.Type {
		case "select":
			values[name] = []string{q.OptionList()[1]}
		case "checkbox":
			values[name] = []string{"AI/ML", "Web Dev"}
		default:
			values[name] = []string{"kept " + q.Name}
		}
	}
	body, contentType := multipartBody(t, values, nil)
	resp, err = client.Post(applyURL, contentType, body)
	require.NoError(t, err)
	page, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(page), renderer.MissingRequiredMessage)
	assert.Contains(t, string(page), "kept "+form.Questions[3].Name)

	values[renderer.InputName(form.Questions[0].ID)] = []string{"Sam"}
	body, contentType = multipartBody(t, values, nil)
	resp, err = client.Post(applyURL, contentType, body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	applied := resp.Header.Get("location")
	assert.True(t, strings.HasPrefix(applied, "/applied?id="), applied)

	resp, err = client.Get(s.URL + applied)
	require.NoError(t, err)
	page, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), "Tech Club")

	apps, _, err := database.ListApplications(context.Background(), s.app.DB, database.ApplicationFilter{FormID: form.ID}, 1, 10)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	stored, err := database.ApplicationByID(context.Background(), s.app.DB, apps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "AI/ML, Web Dev", stored.Answers[len(stored.Answers)-1].Value)

	resp, err = client.Get(applyURL)
	require.NoError(t, err)
	page, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(page), "already-applied")
}

func TestWebUpload(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	form := s.techForm()

	title := form.Title
	questions := []model.Question{
		{Name: "name", Text: "Name", Type: "text", IsRequired: true},
		{Name: "cv", Text: "CV", Type: "file", IsRequired: true},
		{Name: "portfolio", Text: "Portfolio", Type: "file"},
	}
	_, err := database.UpdateForm(ctx, s.app.DB, database.FormUpdate{ID: form.ID, Version: form.Version, Title: &title, Questions: questions})
	require.NoError(t, err)
	form = s.techForm()

	client := browser(t)
	resp, err := client.PostForm(s.URL+"/login", url.Values{"email": {"student@college.edu"}, "password": {"student123"}})
	require.NoError(t, err)
	resp.Body.Close()

	applyURL := fmt.Sprintf("%s/apply/%d", s.URL, form.ID)
	nameField := renderer.InputName(form.Questions[0].ID)
	cvField := renderer.InputName(form.Questions[1].ID)

	body, contentType := multipartBody(t, map[string][]string{nameField: {"Sam"}}, map[string]string{cvField: "cv.exe"})
	resp, err = client.Post(applyURL, contentType, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assertNoUploads := func() {
		t.Helper()
		entries, err := os.ReadDir(s.app.Config.UploadDir)
		if !os.IsNotExist(err) {
			require.NoError(t, err)
		}
		assert.Empty(t, entries)
	}
	assertNoUploads()

	portfolioField := renderer.InputName(form.Questions[2].ID)
	body, contentType = multipartBody(t, map[string][]string{nameField: {"Sam"}}, map[string]string{cvField: "cv.pdf", portfolioField: "site.exe"})
	resp, err = client.Post(applyURL, contentType, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assertNoUploads()

	require.NoError(t, database.SetAdmissionOpen(ctx, s.app.DB, form.SocietyID, false))
	body, contentType = multipartBody(t, map[string][]string{nameField: {"Sam"}}, map[string]string{cvField: "cv.pdf"})
	resp, err = client.Post(applyURL, contentType, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assertNoUploads()
	require.NoError(t, database.SetAdmissionOpen(ctx, s.app.DB, form.SocietyID, true))

	body, contentType = multipartBody(t, map[string][]string{nameField: {"Sam"}}, map[string]string{cvField: "cv.PDF"})
	resp, err = client.Post(applyURL, contentType, body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	entries, err := os.ReadDir(s.app.Config.UploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".pdf"))

	apps, _, err := database.ListApplications(ctx, s.app.DB, database.ApplicationFilter{FormID: form.ID}, 1, 10)
	require.NoError(t, err)
	stored, err := database.ApplicationByID(ctx, s.app.DB, apps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entries[0].Name(), stored.Answers[1].Value)
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/apply/1", safeRedirect("/apply/1"))
	assert.Equal(t, "/", safeRedirect("https://evil.example"))
	assert.Equal(t, "/", safeRedirect("//evil.example"))
	assert.Equal(t, "/", safeRedirect(""))
}
