// Package profiles provides the profiles domain module: marketplace identity
// records and their trust scores.
package profiles

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"rental_portal_backend/internal/events"
	apphttp "rental_portal_backend/internal/http"
	"rental_portal_backend/internal/profiles/handler"
	"rental_portal_backend/internal/profiles/repository"
	"rental_portal_backend/internal/profiles/service"
	"rental_portal_backend/platform/logger"
	"rental_portal_backend/platform/validator"
)

// Module represents the profiles domain module
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates a new profiles module with all dependencies wired
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		svc:     svc,
	}
}

// Service exposes the profiles service to other modules.
func (m *Module) Service() *service.Service {
	return m.svc
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "profiles"
}

// RegisterRoutes registers the module's routes under /api/v1/profiles
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	profiles := ctx.Protected.Group("/profiles")
	m.handler.RegisterRoutes(profiles)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
