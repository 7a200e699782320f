package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/recruit/database"
	"github.com/mbolis/recruit/log"
	"github.com/mbolis/recruit/renderer"
)

// StatusError is a failure with a status code and a message meant for the
// caller. It satisfies the renderer's user-message contract, so a session
// backed directly by the database shows the same text as the API.
type StatusError struct {
	Status  int
	Message string
	Err     error
}

func NewStatusError(status int, msg string, args ...any) *StatusError {
	return &StatusError{Status: status, Message: fmt.Sprintf(msg, args...)}
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *StatusError) UserMessage() string { return e.Message }

func (e *StatusError) Unwrap() error { return e.Err }

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	http.Error(w, errMsg, status)
}

// JSONError sends {"error": msg} with the given status.
func JSONError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}

// Will log an error code at the given level, and send a JSON error with
// the given status and default text
func LogJSONStatus(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string) {
	log.Log(level, code)
	JSONError(w, r, status, http.StatusText(status))
}

// Will log an error code and message at the given level, and send a JSON
// error with the given status and formatted message
func LogJSONStatusMsg(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	JSONError(w, r, status, errMsg)
}

// LogJSONError picks the response for err: StatusError keeps its own status,
// missing rows are 404, conflicts 409, anything else is logged as a 500.
func LogJSONError(w http.ResponseWriter, r *http.Request, code string, err error) {
	var se *StatusError
	var nf *renderer.NotFoundError
	switch {
	case errors.As(err, &se):
		level := log.DebugLevel
		if se.Status >= http.StatusInternalServerError {
			level = log.ErrorLevel
		}
		log.Log(level, code+":", err)
		JSONError(w, r, se.Status, se.Message)
	case errors.As(err, &nf), database.IsNotFound(err):
		log.Debugf("%s: %s", code, err)
		JSONError(w, r, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	case database.IsConflict(err):
		log.Debugf("%s: %s", code, err)
		JSONError(w, r, http.StatusConflict, http.StatusText(http.StatusConflict))
	default:
		log.Errorf("%s: %s", code, err)
		JSONError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
