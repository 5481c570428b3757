package dto

import "invoicely/internal/domain/reports"

// ExportRequest carries the rows currently shown on a report screen.
type ExportRequest struct {
	ReportName string        `json:"report_name" binding:"required,max=100"`
	Rows       []reports.Row `json:"rows"`
	Filter     string        `json:"filter" binding:"max=1000"`
	Sheet      string        `json:"sheet"`
}
