// Package properties provides the property listings domain module.
package properties

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"rental_portal_backend/internal/events"
	apphttp "rental_portal_backend/internal/http"
	"rental_portal_backend/internal/properties/handler"
	"rental_portal_backend/internal/properties/repository"
	"rental_portal_backend/internal/properties/service"
	"rental_portal_backend/internal/storage"
	"rental_portal_backend/platform/logger"
	"rental_portal_backend/platform/validator"
)

// Module represents the properties domain module
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates a new properties module with all dependencies wired
func NewModule(pool *pgxpool.Pool, store storage.Service, bucket string, eventBus events.Bus, appBaseURL string, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, store, bucket, eventBus, appBaseURL, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		svc:     svc,
	}
}

// Service exposes the properties service to other modules.
func (m *Module) Service() *service.Service {
	return m.svc
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "properties"
}

// RegisterRoutes registers public search routes and authenticated
// management routes under /api/v1/properties
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/properties")
	m.handler.RegisterPublicRoutes(public)

	protected := ctx.Protected.Group("/properties")
	protected.Use(ctx.WriteRateLimiter.RateLimit())
	m.handler.RegisterRoutes(protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
