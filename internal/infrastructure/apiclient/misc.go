package apiclient

import (
	"context"
	"net/http"

	"invoicely/internal/domain/auth"
	"invoicely/internal/domain/reports"
	"invoicely/internal/infrastructure/syncstatus"
)

var (
	_ reports.Mailer     = (*Client)(nil)
	_ auth.Backend       = (*Client)(nil)
	_ syncstatus.Fetcher = (*Client)(nil)
)

// EmailReport asks the backend to mail a report.
func (c *Client) EmailReport(ctx context.Context, req reports.EmailRequest) error {
	return c.do(ctx, http.MethodPost, "reports/email/", nil, req, nil)
}

func (c *Client) SyncStatus(ctx context.Context) (syncstatus.Status, error) {
	var s syncstatus.Status
	err := c.do(ctx, http.MethodGet, "sync/status/", nil, nil, &s)
	return s, err
}

func (c *Client) RequestOTP(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "auth/otp/request/", nil, map[string]string{"email": email}, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, email, code string) error {
	return c.do(ctx, http.MethodPost, "auth/otp/verify/", nil, map[string]string{"email": email, "otp": code}, nil)
}

func (c *Client) Register(ctx context.Context, payload auth.RegisterPayload) (auth.Account, error) {
	var a auth.Account
	err := c.do(ctx, http.MethodPost, "auth/register/", nil, payload, &a)
	return a, err
}
