// Package apiclient talks to the recruitment API over HTTP.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/recruit/formschema"
	"github.com/mbolis/recruit/model"
	"github.com/mbolis/recruit/renderer"
)

// APIError is a non-2xx answer other than 401, carrying the server's message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *APIError) UserMessage() string {
	return e.Message
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == status
}

type Tokens struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    float64 `json:"expires_in"`
}

type Client struct {
	baseURL string
	http    *http.Client

	mu     sync.Mutex
	tokens Tokens
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithTokens(t Tokens) Option {
	return func(cl *Client) { cl.tokens = t }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Tokens() Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

func (c *Client) accessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens.AccessToken
}

// Login exchanges email and password for tokens, which are kept for every
// later call.
func (c *Client) Login(ctx context.Context, email, password string) (Tokens, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", nil)
	if err != nil {
		return Tokens{}, errors.Wrap(err, "login")
	}
	req.SetBasicAuth(email, password)

	var t Tokens
	if err := c.send(req, &t); err != nil {
		return Tokens{}, errors.Wrap(err, "login")
	}

	c.mu.Lock()
	c.tokens = t
	c.mu.Unlock()
	return t, nil
}

// Refresh trades the refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) (Tokens, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/refresh", nil)
	if err != nil {
		return Tokens{}, errors.Wrap(err, "refresh")
	}
	req.Header.Set("authorization", "Refresh "+c.Tokens().RefreshToken)

	var t Tokens
	if err := c.send(req, &t); err != nil {
		return Tokens{}, errors.Wrap(err, "refresh")
	}

	c.mu.Lock()
	c.tokens = t
	c.mu.Unlock()
	return t, nil
}

type Profile struct {
	User    model.User     `json:"user"`
	Society *model.Society `json:"society"`
}

func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var p Profile
	err := c.call(ctx, http.MethodGet, "/api/auth/profile", nil, &p)
	return p, errors.Wrap(err, "profile")
}

// GetForm fetches a published form. Missing forms and drafts are a
// *renderer.NotFoundError.
func (c *Client) GetForm(ctx context.Context, formID int) (*model.Form, error) {
	var f model.Form
	err := c.call(ctx, http.MethodGet, "/api/forms/"+strconv.Itoa(formID), nil, &f)
	if IsStatus(err, http.StatusNotFound) {
		return nil, &renderer.NotFoundError{FormID: formID}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get form %d", formID)
	}
	return &f, nil
}

type FormPage struct {
	Forms      []model.Form     `json:"forms"`
	Pagination model.Pagination `json:"pagination"`
}

func (c *Client) PublishedForms(ctx context.Context, page, perPage int) (FormPage, error) {
	var out FormPage
	err := c.call(ctx, http.MethodGet, "/api/forms/published"+pageQuery(page, perPage, nil), nil, &out)
	return out, errors.Wrap(err, "published forms")
}

func (c *Client) SubmitApplication(ctx context.Context, formID int, responses model.Responses) (*model.Application, error) {
	body := map[string]any{
		"form_id":   formID,
		"responses": responses,
	}
	var out struct {
		Application model.Application `json:"application"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/applications", body, &out); err != nil {
		return nil, errors.Wrapf(err, "submit application to form %d", formID)
	}
	return &out.Application, nil
}

// maxPerPage matches the server cap on per_page.
const maxPerPage = 100

// MyApplications lists every application of the logged in student, following
// the pages.
func (c *Client) MyApplications(ctx context.Context) ([]model.Application, error) {
	var all []model.Application
	for page := 1; ; page++ {
		var out struct {
			Applications []model.Application `json:"applications"`
			Pagination   model.Pagination    `json:"pagination"`
		}
		err := c.call(ctx, http.MethodGet, "/api/applications/my-applications"+pageQuery(page, maxPerPage, nil), nil, &out)
		if err != nil {
			return nil, errors.Wrap(err, "my applications")
		}
		all = append(all, out.Applications...)
		if page >= out.Pagination.Pages {
			return all, nil
		}
	}
}

func (c *Client) GetApplication(ctx context.Context, applicationID int) (model.Application, error) {
	var out struct {
		Application model.Application `json:"application"`
	}
	err := c.call(ctx, http.MethodGet, "/api/applications/"+strconv.Itoa(applicationID), nil, &out)
	return out.Application, errors.Wrapf(err, "get application %d", applicationID)
}

func (c *Client) UpdateApplicationStatus(ctx context.Context, applicationID int, status model.Status) (model.Application, error) {
	var out struct {
		Application model.Application `json:"application"`
	}
	err := c.call(ctx, http.MethodPut, fmt.Sprintf("/api/applications/%d/status", applicationID), map[string]any{"status": status}, &out)
	return out.Application, errors.Wrapf(err, "update application %d", applicationID)
}

type ApplicationPage struct {
	Applications []model.Application `json:"applications"`
	Statistics   model.Statistics    `json:"statistics"`
	Pagination   model.Pagination    `json:"pagination"`
}

func (c *Client) SocietyApplications(ctx context.Context, societyID int, status model.Status, page int) (ApplicationPage, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	var out ApplicationPage
	err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/applications/society/%d", societyID)+pageQuery(page, 0, q), nil, &out)
	return out, errors.Wrapf(err, "applications of society %d", societyID)
}

func (c *Client) MySociety(ctx context.Context) (model.Society, error) {
	var out struct {
		Society model.Society `json:"society"`
	}
	err := c.call(ctx, http.MethodGet, "/api/societies/mine", nil, &out)
	return out.Society, errors.Wrap(err, "my society")
}

type NewForm struct {
	SocietyID int               `json:"society_id,omitempty"`
	Title     string            `json:"title"`
	Status    model.FormStatus  `json:"status,omitempty"`
	Fields    formschema.Schema `json:"fields"`
}

func (c *Client) CreateForm(ctx context.Context, f NewForm) (model.Form, error) {
	var out model.Form
	err := c.call(ctx, http.MethodPost, "/api/forms", f, &out)
	return out, errors.Wrap(err, "create form")
}

// FormChanges updates the set fields of a form last seen at Version.
type FormChanges struct {
	Version int                `json:"version"`
	Title   *string            `json:"title,omitempty"`
	Status  *model.FormStatus  `json:"status,omitempty"`
	Fields  *formschema.Schema `json:"fields,omitempty"`
}

// UpdateForm returns the new version. A 409 means the form changed since
// Version was read, or its questions are locked by existing applications.
func (c *Client) UpdateForm(ctx context.Context, formID int, ch FormChanges) (int, error) {
	var out struct {
		Version int `json:"version"`
	}
	err := c.call(ctx, http.MethodPut, "/api/forms/"+strconv.Itoa(formID), ch, &out)
	return out.Version, errors.Wrapf(err, "update form %d", formID)
}

type ManagedForm struct {
	Form   model.Form        `json:"form"`
	Fields formschema.Schema `json:"fields"`
}

// ManageForm fetches a form of the caller's society, drafts included.
func (c *Client) ManageForm(ctx context.Context, formID int) (ManagedForm, error) {
	var out ManagedForm
	err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/forms/%d/manage", formID), nil, &out)
	return out, errors.Wrapf(err, "manage form %d", formID)
}

func pageQuery(page, perPage int, q url.Values) string {
	if q == nil {
		q = url.Values{}
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}
	if token := c.accessToken(); token != "" {
		req.Header.Set("authorization", "Bearer "+token)
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	req.Header.Set("accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		return renderer.ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(resp.StatusCode)
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func (c *Client) DeleteForm(ctx context.Context, formID int) error {
	err := c.call(ctx, http.MethodDelete, "/api/forms/"+strconv.Itoa(formID), nil, nil)
	return errors.Wrapf(err, "delete form %d", formID)
}
