package inbound

import (
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/reminder/runs", end.RequestRun)
	r.GET("/api/v1/reminder/units/:id/rules", end.GetUnitRules)
}
