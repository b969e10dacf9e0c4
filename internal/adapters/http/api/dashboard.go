package api

import (
	"context"
	"net/http"

	"github.com/Bruzzknock/Meeplelytics/internal/domain/summary"
)

// DashboardDependencies defines the interface for the league dashboard.
type DashboardDependencies interface {
	Dashboard(ctx context.Context) summary.Dashboard
}

// dashboardHandler handles dashboard requests
type dashboardHandler struct {
	deps DashboardDependencies
}

func newDashboardHandler(deps DashboardDependencies) *dashboardHandler {
	return &dashboardHandler{deps: deps}
}

// HandleDashboard handles GET /dashboard requests
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Dashboard(r.Context()))
}
