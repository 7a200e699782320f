package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mbolis/recruit/httpx"
	"github.com/mbolis/recruit/log"
)

// urlID reads the {id} URL parameter, answering 400 itself when it is not a
// number.
func urlID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.LogJSONStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return 0, false
	}
	return id, true
}
