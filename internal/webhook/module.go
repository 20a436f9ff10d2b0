package webhook

import (
	apphttp "legalintake_backend/internal/http"
	"legalintake_backend/platform/config"
	"legalintake_backend/platform/logger"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the webhook module. Classifier overrides
// are loaded from the configured YAML path when one is set; a broken override
// file logs a warning and falls back to the built-in lists.
func NewModule(
	cfg config.ReconcileConfig,
	leads LeadReconciler,
	callLogs CallLogReconciler,
	log *logger.Logger,
) *Module {
	classifier := NewClassifier()
	if path := cfg.GetClassifierConfigPath(); path != "" {
		if err := classifier.LoadOverrides(path); err != nil {
			log.Warn("classifier overrides not loaded", "path", path, "error", err)
		}
	}

	svc := NewService(classifier, leads, callLogs, log)
	return &Module{handler: NewHandler(svc, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the webhook endpoints. They stay outside the
// authenticated group: the provider signs nothing and retries aggressively,
// so these endpoints are unauthenticated and never rate limited.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/webhook/voice-calls", m.handler.Handle)
	// Legacy alias kept for provider configurations that predate the rename.
	ctx.V1.POST("/webhook/retell", m.handler.Handle)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
