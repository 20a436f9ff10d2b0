package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"legalintake_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Transcripts and analysis payloads can be large, but anything past this is
// hostile input, not a phone call.
const maxBodyBytes = 4 << 20

// Handler is the webhook endpoint. It always answers HTTP 200: a retryable
// error code would trigger the provider's retry policy and amplify transient
// store failures into duplicate downstream side effects.
type Handler struct {
	svc *Service
	log *logger.Logger
}

// NewHandler creates the webhook handler.
func NewHandler(svc *Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Handle processes one webhook delivery.
func (h *Handler) Handle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": h.process(c)})
}

// process returns whether reconciliation succeeded. Dropped deliveries count
// as success; only store failures and malformed bodies report false. The
// recover guard keeps a panicking pipeline from ever surfacing a 500.
func (h *Handler) process(c *gin.Context) (success bool) {
	var raw []byte

	defer func() {
		if r := recover(); r != nil {
			h.log.Error("webhook handler panicked", "panic", r, "payload", string(raw))
			success = false
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		h.log.WebhookFailure(err, raw)
		return false
	}

	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.log.WebhookFailure(err, raw)
		return false
	}

	if err := h.svc.Process(c.Request.Context(), payload); err != nil {
		h.log.WebhookFailure(err, raw)
		return false
	}

	return true
}
