// Package router adapts julienschmidt/httprouter to handlers that return a
// payload or an error, and owns the shared middleware stack.
package router

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/config"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/goerror"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/instrument"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/jwt"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/uid"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/validator"
)

type errorResponse struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error,omitempty"`
}

type successResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Handler returns a payload to encode as JSON, or an error.
type Handler func(r *Request) (any, error)

// Config holds the router's dependencies.
type Config struct {
	Config     config.Config
	UUID       uid.StringID
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
	// Public lists "METHOD /route" pairs that skip authentication in
	// addition to the index and health routes.
	Public []string
}

// Router is an http.Handler around httprouter plus the middleware chain.
type Router struct {
	hr  *httprouter.Router
	mws []Middleware
}

// NewRouter builds the router with recovery, real IP, correlation id,
// observability, maintenance and authentication middlewares, in that order.
func NewRouter(cfg Config) *Router {
	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "endpoint not found"}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "method not allowed"}, http.StatusMethodNotAllowed)
		}),
	}

	public := map[string]struct{}{
		http.MethodGet + " /":       {},
		http.MethodGet + " /health": {},
	}
	for _, p := range cfg.Public {
		public[p] = struct{}{}
	}

	ins := cfg.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	r := &Router{
		hr: hr,
		mws: []Middleware{
			middlewareRecoverer,
			middlewareIP,
			middlewareCorrelationID(cfg.UUID),
			middlewareObservability(ins),
			middlewareMaintenance(cfg.Config),
			middlewareAuthentication(cfg.JWT, public),
		},
	}

	hr.GET("/", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, successResponse{Message: "Reminder scheduler API"}, http.StatusOK)
	})

	return r
}

// GET registers a GET endpoint.
func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodGet, path, h, mws...)
}

// POST registers a POST endpoint.
func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPost, path, h, mws...)
}

// GETRaw registers a GET endpoint that writes the response itself.
func (r *Router) GETRaw(path string, h http.Handler, mws ...Middleware) {
	r.hr.Handler(http.MethodGet, path, Chain(h, append(r.mws, mws...)...))
}

func (r *Router) endpoint(method, path string, h Handler, mws ...Middleware) {
	r.hr.Handler(method, path, Chain(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp, err := h(&Request{Request: req})
		if err != nil {
			if rec, ok := w.(*statusRecorder); ok {
				rec.err = err
			}
			writeError(w, err)
			return
		}
		writeSuccess(w, resp)
	}), append(r.mws, mws...)...))
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

func writeError(w http.ResponseWriter, err error) {
	gerr, ok := goerror.As(err)
	if !ok {
		writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	resp := errorResponse{Message: gerr.Msg(), Error: gerr.Fields()}

	var ve validator.ValidationError
	if errors.As(err, &ve) {
		resp.Error = ve.Values()
	}

	writeJSON(w, resp, gerr.StatusCode())
}

func writeSuccess(w http.ResponseWriter, resp any) {
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	code := http.StatusOK
	if sc, ok := resp.(interface{ StatusCode() int }); ok {
		code = sc.StatusCode()
	}

	msg := "request has been successfully"
	if m, ok := resp.(interface{ Message() string }); ok {
		msg = m.Message()
	}

	writeJSON(w, successResponse{Message: msg, Data: resp}, code)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("router: failed to encode response", "error", err)
	}
}
