// Package leads provides the leads bounded context module.
package leads

import (
	"legalintake_backend/internal/events"
	apphttp "legalintake_backend/internal/http"
	"legalintake_backend/internal/leads/handler"
	"legalintake_backend/internal/leads/repository"
	"legalintake_backend/internal/leads/service"
	"legalintake_backend/platform/config"
	"legalintake_backend/platform/logger"
	"legalintake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	cfg config.ReconcileConfig,
	attorneys service.AttorneyDirectory,
	eventBus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, attorneys, eventBus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for use by the webhook pipeline.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leadsGroup := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
