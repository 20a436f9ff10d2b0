// Package attorneys provides the attorney directory bounded context module.
package attorneys

import (
	"legalintake_backend/internal/attorneys/handler"
	"legalintake_backend/internal/attorneys/repository"
	"legalintake_backend/internal/attorneys/service"
	apphttp "legalintake_backend/internal/http"
	"legalintake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the attorneys bounded context module implementing http.Module.
type Module struct {
	handler   *handler.Handler
	service   *service.Service
	directory *service.Directory
}

// NewModule creates and initializes the attorneys module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, directory: service.NewDirectory(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "attorneys"
}

// Directory returns the adapter consumed by the lead assignment flow.
func (m *Module) Directory() *service.Directory {
	return m.directory
}

// RegisterRoutes mounts attorney routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	attorneysGroup := ctx.Protected.Group("/attorneys")
	m.handler.RegisterRoutes(attorneysGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
