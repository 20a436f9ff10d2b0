// Package handler provides HTTP handlers for call logs.
package handler

import (
	"net/http"
	"strconv"

	"legalintake_backend/internal/calllogs/service"
	"legalintake_backend/internal/calllogs/transport"
	"legalintake_backend/platform/httpkit"
	"legalintake_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for call logs.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new call logs handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers call log routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/by-call/:callId", h.GetByCallID)
	rg.PATCH("/:id", h.Update)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListCallLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if req.WithLead {
		logs, err := h.svc.ListWithLead(c.Request.Context())
		if httpkit.HandleError(c, err) {
			return
		}
		items := make([]transport.CallLogResponse, 0, len(logs))
		for _, item := range logs {
			items = append(items, transport.FromCallLogWithLead(item, service.IsComplete(item.CallLog)))
		}
		httpkit.OK(c, transport.ListCallLogsResponse{Items: items, Total: len(items)})
		return
	}

	logs, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	items := make([]transport.CallLogResponse, 0, len(logs))
	for _, log := range logs {
		items = append(items, transport.FromCallLog(log, service.IsComplete(log)))
	}
	httpkit.OK(c, transport.ListCallLogsResponse{Items: items, Total: len(items)})
}

func (h *Handler) GetByCallID(c *gin.Context) {
	callID := c.Param("callId")
	if callID == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	log, err := h.svc.GetByCallID(c.Request.Context(), callID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromCallLog(*log, service.IsComplete(*log)))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateCallLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	log, err := h.svc.Update(c.Request.Context(), id, req.ToPatch())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromCallLog(*log, service.IsComplete(*log)))
}
