package api

import (
	"encoding/json"
	"net/http"

	"risk-insight/config"
	"risk-insight/worker"
)

func ReportStatusHandler(cfg *config.Config, pool *worker.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := requireUser(cfg, r); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "Missing id", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		job, ok := pool.Store().Get(id)
		if !ok {
			json.NewEncoder(w).Encode(map[string]string{"status": "unknown"})
			return
		}
		json.NewEncoder(w).Encode(job)
	}
}
