package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"invoicely/internal/domain/reports"
	"invoicely/internal/infrastructure/http/v1/dto"
	"invoicely/pkg/logger"
)

// ReportsHandler exports and e-mails report rows.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// Export handles POST /reports/export?format=csv|xlsx.
func (h *ReportsHandler) Export(c *gin.Context) {
	format, err := reports.ParseFormat(c.Query("format"))
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.ExportRequest
	if !h.BindJSON(c, &req) {
		return
	}

	filter, err := reports.CompileFilter(req.Filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	rows, err := filter.Apply(req.Rows)
	if err != nil {
		h.Error(c, err)
		return
	}

	sheet := req.Sheet
	if sheet == "" {
		sheet = req.ReportName
	}

	var buf bytes.Buffer
	if err := reports.Export(&buf, format, rows, sheet); err != nil {
		h.Error(c, err)
		return
	}

	logger.Info(c.Request.Context(), "report exported",
		"report_name", req.ReportName,
		"format", format,
		"rows", len(rows),
		"filtered", filter.String() != "",
	)

	c.Header("Content-Disposition", `attachment; filename="`+format.Filename(req.ReportName)+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// Email handles POST /reports/email.
func (h *ReportsHandler) Email(c *gin.Context) {
	var req reports.EmailRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.RecipientEmail = strings.TrimSpace(req.RecipientEmail)
	if err := h.service.Email(c.Request.Context(), req); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.SuccessResponse{Success: true, Message: "Report sent to " + req.RecipientEmail})
}
