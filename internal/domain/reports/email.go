package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"

	"invoicely/internal/core/apperror"
	"invoicely/pkg/logger"
)

// EmailRequest is the body of the backend's mail-dispatch endpoint.
// DateFilter is passed through as the report screen produced it.
type EmailRequest struct {
	ReportName     string          `json:"report_name"`
	ReportData     []Row           `json:"report_data"`
	RecipientEmail string          `json:"recipient_email"`
	DateFilter     json.RawMessage `json:"date_filter"`
}

// Validate checks the request before it is sent.
func (r *EmailRequest) Validate() error {
	r.ReportName = strings.TrimSpace(r.ReportName)
	r.RecipientEmail = strings.TrimSpace(r.RecipientEmail)

	if r.ReportName == "" {
		return apperror.NewFieldValidation("report_name", "Report name is required")
	}
	if r.RecipientEmail == "" {
		return apperror.NewFieldValidation("recipient_email", "Recipient email is required")
	}
	addr, err := mail.ParseAddress(r.RecipientEmail)
	if err != nil || addr.Address != r.RecipientEmail {
		return apperror.NewFieldValidation("recipient_email", "Enter a valid email address")
	}
	if len(r.ReportData) == 0 {
		return apperror.NewFieldValidation("report_data", "Report has no rows to send")
	}
	if len(r.DateFilter) > 0 && !json.Valid(r.DateFilter) {
		return apperror.NewFieldValidation("date_filter", "Date filter is not valid JSON")
	}
	return nil
}

// Mailer is the backend's report mail-dispatch endpoint.
type Mailer interface {
	EmailReport(ctx context.Context, req EmailRequest) error
}

// Service sends reports by e-mail.
type Service struct {
	mailer Mailer
}

// NewService creates a new report service.
func NewService(mailer Mailer) *Service {
	return &Service{mailer: mailer}
}

// Email validates and dispatches req in a single request.
func (s *Service) Email(ctx context.Context, req EmailRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.mailer.EmailReport(ctx, req); err != nil {
		return fmt.Errorf("email report: %w", err)
	}
	logger.Info(ctx, "report emailed",
		"report_name", req.ReportName,
		"rows", len(req.ReportData),
	)
	return nil
}
