package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/apperror"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/reference"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/infrastructure/http/v1/dto"
)

// ReferenceHandler serves the lookup lists behind report filters.
type ReferenceHandler struct {
	*BaseHandler
	service *reference.Service
}

// NewReferenceHandler creates a new reference handler.
func NewReferenceHandler(base *BaseHandler, service *reference.Service) *ReferenceHandler {
	return &ReferenceHandler{BaseHandler: base, service: service}
}

// RegisterRoutes mounts the reference endpoints on rg.
func (h *ReferenceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/atolls", h.Atolls)
	rg.GET("/islands", h.Islands)
	rg.GET("/dealers", h.Dealers)
}

// Atolls handles GET /reference/atolls
func (h *ReferenceHandler) Atolls(c *gin.Context) {
	items, err := h.service.Atolls(c.Request.Context())
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	h.OK(c, dto.NewListResponse(items))
}

// Islands handles GET /reference/islands?atoll=
func (h *ReferenceHandler) Islands(c *gin.Context) {
	var q dto.IslandQuery
	if !h.BindQuery(c, &q) {
		return
	}
	items, err := h.service.Islands(c.Request.Context(), q.Atoll)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	h.OK(c, dto.NewListResponse(items))
}

// Dealers handles GET /reference/dealers
func (h *ReferenceHandler) Dealers(c *gin.Context) {
	items, err := h.service.Dealers(c.Request.Context())
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	h.OK(c, dto.NewListResponse(items))
}
