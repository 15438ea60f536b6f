package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/pawhaven/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed under
// app.maintenance.endpoints. An entry is either a bare pattern, which blocks
// every method, or "METHOD /pattern".
func middlewareMaintenance(cfg config.Config) Middleware {
	blocked := make(map[string]struct{})
	if cfg != nil {
		for _, entry := range cfg.GetArray("app.maintenance.endpoints") {
			if method, pattern, ok := strings.Cut(entry, " "); ok {
				blocked[strings.ToUpper(method)+" "+strings.TrimSpace(pattern)] = struct{}{}
				continue
			}
			blocked[entry] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		if len(blocked) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pattern := matchedRoutePath(r)
			_, allMethods := blocked[pattern]
			_, exact := blocked[r.Method+" "+pattern]
			if allMethods || exact {
				w.Header().Set("Retry-After", "120")
				writeJSON(w, errorResponse{Message: "Service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
