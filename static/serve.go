package static

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"risk-insight/config"
	"risk-insight/logging"
)

// Sert les fichiers statiques avec whitelist et fallback (static/static_default)
func RegisterStaticHandler(mux *http.ServeMux, cfg *config.Config, accessLogger *logging.Logger) {
	staticDir := cfg.Server.Static
	if staticDir == "" {
		staticDir = "./static"
	}
	staticDefault := cfg.Server.StaticDefault
	if staticDefault == "" {
		staticDefault = "./static"
	}
	allowed := cfg.Server.StaticAllowed
	if len(allowed) == 0 {
		allowed = []string{"index.html", "*.css", "*.js"}
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		reqPath := strings.TrimPrefix(r.URL.Path, "/")
		if reqPath == "" {
			reqPath = "index.html"
		}

		// Whitelist (wildcard support)
		if !isAllowedWildcard(reqPath, allowed) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			accessLogger.Write("[STATIC_REFUSED] " + reqPath)
			return
		}

		for _, dir := range []string{staticDir, staticDefault} {
			filePath := filepath.Join(dir, reqPath)
			content, err := os.ReadFile(filePath)
			if err != nil {
				continue
			}
			final := applyTemplateMacros(string(content), cfg.Server.TemplateVars)
			w.Header().Set("Content-Type", mime.TypeByExtension(filepath.Ext(filePath)))
			w.Write([]byte(final))
			accessLogger.Write("[STATIC_OK] " + reqPath)
			return
		}

		http.NotFound(w, r)
		accessLogger.Write("[STATIC_NOTFOUND] " + reqPath)
	})
}

func applyTemplateMacros(content string, vars map[string]string) string {
	for key, val := range vars {
		placeholder := "{" + key + "}"
		content = strings.ReplaceAll(content, placeholder, val)
	}
	return content
}

// Vérifie si un nom de fichier est dans la whitelist (wildcard)
func isAllowedWildcard(fileName string, allowed []string) bool {
	for _, pattern := range allowed {
		if matched, _ := filepath.Match(pattern, fileName); matched {
			return true
		}
		if strings.HasPrefix(pattern, "*/") {
			suffix := pattern[2:]
			if strings.HasSuffix(fileName, suffix) {
				return true
			}
		}
	}
	return false
}
