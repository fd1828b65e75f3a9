package handler

import (
	"net/http"
	"strconv"

	"hoclieu/internal/httputil"
)

// parseID parses the {id} path segment as an attachment id.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// intQuery parses a required integer query parameter.
func intQuery(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	n, err := strconv.Atoi(raw)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, key+" must be an integer")
		return 0, false
	}
	return n, true
}
