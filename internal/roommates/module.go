// Package roommates provides the roommate matching domain module.
package roommates

import (
	apphttp "rental_portal_backend/internal/http"
	"rental_portal_backend/internal/roommates/handler"
	"rental_portal_backend/internal/roommates/service"
)

// Module represents the roommates domain module
type Module struct {
	handler *handler.Handler
}

// NewModule creates a new roommates module backed by the profiles service
func NewModule(profiles service.ProfileSource) *Module {
	svc := service.New(profiles)
	return &Module{handler: handler.New(svc)}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "roommates"
}

// RegisterRoutes registers the module's routes under /api/v1/roommates
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	roommates := ctx.Protected.Group("/roommates")
	m.handler.RegisterRoutes(roommates)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
