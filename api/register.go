package api

import (
	"net/http"

	"risk-insight/auth"
	"risk-insight/config"
	"risk-insight/logging"
	"risk-insight/store"
	"risk-insight/utils"
	"risk-insight/worker"
)

func RegisterHandlers(mux *http.ServeMux, cfg *config.Config, rcfg *config.ReportConfig, users *auth.UsersFile, pool *worker.Pool, history *store.History, accessLogger, loginLogger *logging.Logger) {
	utils.LogToFile("api.log")
	mux.HandleFunc("/api/login", LoginHandler(cfg, users, loginLogger))
	mux.HandleFunc("/api/vaults", VaultsHandler(cfg, rcfg, accessLogger))
	mux.HandleFunc("/api/reports/generate", ReportGenerateHandler(cfg, pool, accessLogger))
	mux.HandleFunc("/api/reports/status", ReportStatusHandler(cfg, pool))
	mux.HandleFunc("/api/reports/download", DownloadReportHandler(cfg, pool, accessLogger))
	mux.HandleFunc("/api/reports/history", HistoryHandler(cfg, history))
}

func StartServer(listenAddr string, mux *http.ServeMux) error {
	return http.ListenAndServe(listenAddr, mux)
}

// requireUser applique le JWT si l'auth est activée. Auth désactivée :
// tout le monde passe en anonyme non-admin.
func requireUser(cfg *config.Config, r *http.Request) (string, bool, error) {
	if !cfg.Auth.Enabled {
		return "anonymous", false, nil
	}
	return auth.ExtractUserAndAdminFromJWT(r, cfg.JWT.Secret)
}
