package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"risk-insight/config"
	"risk-insight/store"
)

// HistoryHandler liste les dernières générations persistées.
// Paramètre GET : limit (optionnel, défaut 20).
func HistoryHandler(cfg *config.Config, history *store.History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := requireUser(cfg, r); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if history == nil {
			http.Error(w, "History disabled", http.StatusNotFound)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := history.Recent(limit)
		if err != nil {
			http.Error(w, "Server error", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []store.Entry{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	}
}
