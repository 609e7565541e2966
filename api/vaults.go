package api

import (
	"encoding/json"
	"net/http"

	"risk-insight/config"
	"risk-insight/logging"
)

// VaultsHandler expose les vaults configurés, groupés par profil,
// pour que le formulaire web construise ses cases à cocher.
func VaultsHandler(cfg *config.Config, rcfg *config.ReportConfig, accessLogger *logging.Logger) http.HandlerFunc {
	type vaultOut struct {
		Name  string `json:"name"`
		Chain string `json:"chain"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		username, _, err := requireUser(cfg, r)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		out := map[string][]vaultOut{
			"bluechip":  {},
			"long_tail": {},
		}
		for _, v := range rcfg.Vaults.Bluechip {
			out["bluechip"] = append(out["bluechip"], vaultOut{Name: v.Name, Chain: v.Chain})
		}
		for _, v := range rcfg.Vaults.LongTail {
			out["long_tail"] = append(out["long_tail"], vaultOut{Name: v.Name, Chain: v.Chain})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
		accessLogger.Write("VAULTS user=" + username)
	}
}
