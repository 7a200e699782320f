package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/recruit/database"
	"github.com/mbolis/recruit/model"
	"github.com/mbolis/recruit/renderer"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello", Sanitize(" <b>hello</b> "))
	assert.Equal(t, "", Sanitize(`<script>alert("x")</script>`))
	assert.Equal(t, model.Responses{1: "a & b"}, SanitizeResponses(model.Responses{1: "a & b"}))
}

func TestPage(t *testing.T) {
	tests := []struct {
		query         string
		page, perPage int
	}{
		{"", 1, 12},
		{"page=3&per_page=5", 3, 5},
		{"page=0&per_page=-1", 1, 12},
		{"page=x&per_page=1000", 1, maxPerPage},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		page, perPage := Page(r, 12)
		assert.Equal(t, tt.page, page, tt.query)
		assert.Equal(t, tt.perPage, perPage, tt.query)
	}
}

func TestLogJSONError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"status error", NewStatusError(http.StatusBadRequest, "Form %d is closed", 4), http.StatusBadRequest, "Form 4 is closed"},
		{"not found", errors.Wrap(database.ErrNotFound, "get form"), http.StatusNotFound, "Not Found"},
		{"renderer not found", &renderer.NotFoundError{FormID: 2}, http.StatusNotFound, "Not Found"},
		{"conflict", database.ErrFormHasApplications, http.StatusConflict, "Conflict"},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			LogJSONError(w, r, "test", tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestResponseBuffer(t *testing.T) {
	buf := NewResponseBuffer()
	buf.Header().Set("X-Test", "1")
	buf.WriteHeader(http.StatusTeapot)
	buf.WriteHeader(http.StatusOK)
	buf.Write([]byte("short and stout"))

	assert.Equal(t, http.StatusTeapot, buf.Status())

	w := httptest.NewRecorder()
	require.NoError(t, buf.Flush(w))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Test"))
	assert.Equal(t, "short and stout", w.Body.String())

	assert.Zero(t, NewResponseBuffer().Status())
}
