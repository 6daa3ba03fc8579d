package handlers

import (
	"net/http"
	"strconv"
	"time"

	"Preview-Player-Go/pkg/db"
)

// MissesJSON returns the queries that most often found no preview over a
// period controlled by the 'days' query parameter (default 7).
func (app *Application) MissesJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if app.Lookups == nil {
		http.Error(w, "db not configured", http.StatusInternalServerError)
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 7
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	res, err := app.Lookups.TopMissesSince(r.Context(), time.Now().AddDate(0, 0, -days), limit)
	if err != nil {
		log.WithError(err).Error("load top misses")
		http.Error(w, "failed to load insights", http.StatusInternalServerError)
		return
	}
	if res == nil {
		res = []db.QueryCount{}
	}
	respondJSON(w, http.StatusOK, res)
}
