package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"risk-insight/config"
	"risk-insight/logging"
	"risk-insight/worker"
)

// DownloadReportHandler renvoie le fichier d'un job terminé.
// Paramètres GET : id (obligatoire), type=pdf|html|xlsx (optionnel,
// défaut : le format du job).
func DownloadReportHandler(cfg *config.Config, pool *worker.Pool, accessLogger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, _, err := requireUser(cfg, r)
		if err != nil {
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		reportID := r.URL.Query().Get("id")
		if reportID == "" {
			http.Error(w, "Missing id", http.StatusBadRequest)
			return
		}

		job, ok := pool.Store().Get(reportID)
		if !ok || job.Status != worker.StatusDone {
			http.Error(w, "No file available for this report", http.StatusNotFound)
			return
		}

		fileType := strings.ToLower(r.URL.Query().Get("type"))
		if fileType == "" {
			fileType = job.Format
		}
		if fileType != job.Format {
			http.Error(w, "Report was generated as "+job.Format, http.StatusBadRequest)
			return
		}

		var contentType string
		switch fileType {
		case "pdf":
			contentType = "application/pdf"
		case "html":
			contentType = "text/html; charset=utf-8"
		case "xlsx":
			contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		default:
			http.Error(w, "Unsupported type", http.StatusBadRequest)
			return
		}

		if _, err := os.Stat(job.Path); err != nil {
			http.Error(w, "No file available for this report", http.StatusNotFound)
			return
		}

		accessLogger.Writef("[DOWNLOAD] user=%s id=%s type=%s path=%s", username, reportID, fileType, job.Path)

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(job.Path)))
		http.ServeFile(w, r, job.Path)
	}
}
