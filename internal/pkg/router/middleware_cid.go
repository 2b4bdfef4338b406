package router

import (
	"net/http"
	"strings"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/instrument"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/uid"
)

const (
	// HeaderCorrelationID carries the correlation id in and out of the service.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is accepted when proxies set it instead.
	HeaderRequestID = "X-Request-ID"

	maxCIDLen = 128
)

func cleanCID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.ContainsAny(v, "\r\n") {
		return ""
	}
	return v[:min(len(v), maxCIDLen)]
}

func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := cleanCID(r.Header.Get(HeaderCorrelationID))
			if cid == "" {
				cid = cleanCID(r.Header.Get(HeaderRequestID))
			}
			if cid == "" && gen != nil {
				cid = gen.Generate()
			}

			ctx := instrument.SetCorrelationID(r.Context(), cid)
			w.Header().Set(HeaderCorrelationID, instrument.GetCorrelationID(ctx))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
