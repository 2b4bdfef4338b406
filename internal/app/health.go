package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/goerror"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/router"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

func (healthResponse) Message() string { return "Service healthy" }

func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Database: "ok", Redis: "disabled"}

	if err := a.dbConn.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "health check failed", "resource", "database", "error", err)
		return nil, goerror.NewBusiness("Database unavailable", goerror.CodeUnavailable)
	}

	if a.cacheConn != nil {
		if err := a.cacheConn.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "health check failed", "resource", "redis", "error", err)
			return nil, goerror.NewBusiness("Redis unavailable", goerror.CodeUnavailable)
		}
		resp.Redis = "ok"
	}

	return resp, nil
}
