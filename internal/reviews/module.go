// Package reviews provides the address reviews domain module.
package reviews

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"rental_portal_backend/internal/events"
	apphttp "rental_portal_backend/internal/http"
	"rental_portal_backend/internal/reviews/handler"
	"rental_portal_backend/internal/reviews/repository"
	"rental_portal_backend/internal/reviews/service"
	"rental_portal_backend/platform/validator"
)

// Module represents the reviews domain module
type Module struct {
	handler *handler.Handler
}

// NewModule creates a new reviews module with all dependencies wired
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "reviews"
}

// RegisterRoutes registers public lookups and rate-limited submissions
// under /api/v1/reviews
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/reviews")
	m.handler.RegisterPublicRoutes(public)

	protected := ctx.Protected.Group("/reviews")
	protected.Use(ctx.WriteRateLimiter.RateLimit())
	m.handler.RegisterRoutes(protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
