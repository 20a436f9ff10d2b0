// Package calllogs provides the call logs bounded context module.
package calllogs

import (
	"legalintake_backend/internal/calllogs/handler"
	"legalintake_backend/internal/calllogs/repository"
	"legalintake_backend/internal/calllogs/service"
	"legalintake_backend/internal/events"
	apphttp "legalintake_backend/internal/http"
	"legalintake_backend/platform/config"
	"legalintake_backend/platform/logger"
	"legalintake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the call logs bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the call logs module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	cfg config.ReconcileConfig,
	eventBus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, eventBus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "calllogs"
}

// Service returns the service layer for use by the webhook pipeline and the
// scheduler's duplicate sweep.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts call log routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	logsGroup := ctx.Protected.Group("/call-logs")
	m.handler.RegisterRoutes(logsGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
