// Package handler provides HTTP handlers for the attorney directory.
package handler

import (
	"net/http"

	"legalintake_backend/internal/attorneys/repository"
	"legalintake_backend/internal/attorneys/service"
	"legalintake_backend/internal/attorneys/transport"
	"legalintake_backend/platform/httpkit"
	"legalintake_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for attorneys.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new attorneys handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers attorney routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
}

func (h *Handler) List(c *gin.Context) {
	attorneys, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.AttorneyResponse, 0, len(attorneys))
	for _, a := range attorneys {
		items = append(items, transport.FromAttorney(a))
	}
	httpkit.OK(c, transport.ListAttorneysResponse{Items: items, Total: len(items)})
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateAttorneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	attorney, err := h.svc.Create(c.Request.Context(), repository.Attorney{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Specialty: req.Specialty,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.FromAttorney(*attorney))
}
