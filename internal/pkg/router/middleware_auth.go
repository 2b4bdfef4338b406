package router

import (
	"net/http"
	"strings"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/jwt"
)

func middlewareAuthentication(verifier jwt.JWT, public map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := public[r.Method+" "+matchedRoutePath(r)]; ok || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, found := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeJSON(w, errorResponse{Message: "Authentication required"}, http.StatusUnauthorized)
				return
			}

			clm, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				writeJSON(w, errorResponse{Message: "Invalid or expired token"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), clm)))
		})
	}
}
