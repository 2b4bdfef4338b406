package router

import (
	"net/http"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed under
// app.maintenance.endpoints. The list is read per request so a config reload
// takes effect without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			for _, blocked := range cfg.GetArray("app.maintenance.endpoints") {
				if blocked == route {
					writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
