package api

import (
	"encoding/json"
	"net/http"

	"risk-insight/auth"
	"risk-insight/config"
	"risk-insight/logging"
)

func LoginHandler(cfg *config.Config, users *auth.UsersFile, loginLogger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Bad JSON", http.StatusBadRequest)
			loginLogger.Write("LOGIN FAIL (bad json)")
			return
		}

		isAdmin, err := auth.VerifyUser(cfg, users, req.Username, req.Password)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			loginLogger.Write("LOGIN FAIL user=" + req.Username)
			return
		}

		tokenString, err := auth.GenerateJWT(cfg.JWT.Secret, req.Username, isAdmin, cfg.JWT.ExpirationMinutes)
		if err != nil {
			http.Error(w, "Server error", http.StatusInternalServerError)
			loginLogger.Write("LOGIN FAIL (jwt error) user=" + req.Username)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": tokenString})
		loginLogger.Write("LOGIN OK user=" + req.Username)
	}
}
