package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"risk-insight/config"
	"risk-insight/logging"
	"risk-insight/worker"
)

// ReportGenerateHandler soumet une génération de rapport. Payload :
// {"use_sample": bool, "api_key": "...", "vaults": [...], "format": "pdf|html|xlsx"}
func ReportGenerateHandler(cfg *config.Config, pool *worker.Pool, accessLogger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		username, _, err := requireUser(cfg, r)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			accessLogger.Write("GENERATE_FAIL user=<unauth>")
			return
		}

		var payload struct {
			UseSample bool     `json:"use_sample"`
			APIKey    string   `json:"api_key"`
			Vaults    []string `json:"vaults"`
			Format    string   `json:"format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Bad JSON", http.StatusBadRequest)
			accessLogger.Write("GENERATE_FAIL user=" + username + " bad_json")
			return
		}

		format := strings.ToLower(payload.Format)
		switch format {
		case "", "pdf", "html", "xlsx":
		default:
			http.Error(w, "Unsupported format", http.StatusBadRequest)
			accessLogger.Write("GENERATE_FAIL user=" + username + " bad_format=" + payload.Format)
			return
		}

		id, err := pool.Submit(worker.Request{
			Sample: payload.UseSample,
			APIKey: payload.APIKey,
			Vaults: payload.Vaults,
			Format: format,
			Owner:  username,
		})
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, worker.ErrQueueFull) {
				status = http.StatusServiceUnavailable
			}
			http.Error(w, err.Error(), status)
			accessLogger.Write("GENERATE_FAIL user=" + username + " " + err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": id})
		accessLogger.Write("GENERATE_OK user=" + username + " id=" + id)
	}
}
