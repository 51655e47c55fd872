// Package savedsearch provides the saved searches domain module: stored
// listing filters plus the dispatcher that alerts their owners when new
// listings match.
package savedsearch

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"rental_portal_backend/internal/events"
	apphttp "rental_portal_backend/internal/http"
	"rental_portal_backend/internal/savedsearch/handler"
	"rental_portal_backend/internal/savedsearch/repository"
	"rental_portal_backend/internal/savedsearch/service"
	"rental_portal_backend/platform/logger"
	"rental_portal_backend/platform/validator"
)

// Module represents the saved searches domain module
type Module struct {
	handler    *handler.Handler
	dispatcher *service.Dispatcher
}

// NewModule creates a new saved searches module with all dependencies wired
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)
	dispatcher := service.NewDispatcher(svc, eventBus, log)

	return &Module{
		handler:    h,
		dispatcher: dispatcher,
	}
}

// RegisterHandlers subscribes the dispatcher to listing events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	m.dispatcher.RegisterHandlers(bus)
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "savedsearch"
}

// RegisterRoutes registers the module's routes under /api/v1/saved-searches
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	searches := ctx.Protected.Group("/saved-searches")
	m.handler.RegisterRoutes(searches)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
