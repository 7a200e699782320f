package httpx

import (
	"net/http"
	"strconv"
)

const maxPerPage = 100

// Page reads the page and per_page query parameters. Missing or invalid values
// fall back to page 1 and defaultPerPage; per_page is capped.
func Page(r *http.Request, defaultPerPage int) (page, perPage int) {
	page = queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage = queryInt(r, "per_page", defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
