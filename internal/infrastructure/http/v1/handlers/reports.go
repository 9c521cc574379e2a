package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/reports"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/infrastructure/http/v1/dto"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/pkg/logger"
)

const csvContentType = "text/csv; charset=utf-8"

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
	now     func() time.Time
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
		now:         time.Now,
	}
}

// RegisterRoutes mounts the report endpoints on rg.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:name", h.Get)
}

// List handles GET /reports
func (h *ReportsHandler) List(c *gin.Context) {
	h.OK(c, dto.ReportListResponse{Reports: h.service.Definitions()})
}

// Get handles GET /reports/:name
func (h *ReportsHandler) Get(c *gin.Context) {
	var q dto.ReportQuery
	if !h.BindQuery(c, &q) {
		return
	}

	req, err := h.service.Prepare(c.Param("name"), q.ToRaw())
	if err != nil {
		h.Error(c, err)
		return
	}

	switch {
	case req.Definition.LegacyCSV:
		h.bufferedCSV(c, req)
	case req.Format() == reports.FormatCSV:
		h.streamCSV(c, req)
	default:
		page, err := h.service.Page(c.Request.Context(), req)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, page)
	}
}

func (h *ReportsHandler) attachment(c *gin.Context, req *reports.Request) {
	c.Header("Content-Type", csvContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", req.Filename(h.now())))
}

func (h *ReportsHandler) bufferedCSV(c *gin.Context, req *reports.Request) {
	rows, err := h.service.Rows(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	body, err := reports.BufferCSV(req.Definition.Columns, rows)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.attachment(c, req)
	c.Data(http.StatusOK, csvContentType, []byte(body))
}

// streamCSV writes rows as the cursor yields them. A failure before anything
// reached the client becomes a normal error response; after that the
// connection is aborted so a truncated file never looks complete.
func (h *ReportsHandler) streamCSV(c *gin.Context, req *reports.Request) {
	h.attachment(c, req)
	c.Status(http.StatusOK)

	rows, err := h.service.WriteCSV(c.Request.Context(), req, c.Writer)
	if err == nil {
		return
	}
	if !c.Writer.Written() {
		h.Error(c, err)
		return
	}

	logger.Error(c.Request.Context(), "csv stream aborted",
		"report", req.Definition.Name,
		"rows", rows,
		"error", err,
	)
	panic(http.ErrAbortHandler)
}
