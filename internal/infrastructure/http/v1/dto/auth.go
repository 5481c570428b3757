package dto

import (
	"time"

	appctx "invoicely/internal/core/context"
	"invoicely/internal/domain/auth"
)

// RegistrationResponse shows where a sign-up stands.
type RegistrationResponse struct {
	ID               string     `json:"id"`
	Step             auth.Step  `json:"step"`
	Email            string     `json:"email"`
	OrganizationName string     `json:"organization_name"`
	OTPSentAt        *time.Time `json:"otp_sent_at,omitempty"`
}

func FromRegistration(r auth.Registration) RegistrationResponse {
	resp := RegistrationResponse{
		ID:               r.ID.String(),
		Step:             r.Step,
		Email:            r.Email,
		OrganizationName: r.Organization,
	}
	if !r.OTPSentAt.IsZero() {
		t := r.OTPSentAt
		resp.OTPSentAt = &t
	}
	return resp
}

// VerifyOTPRequest carries the code from the verification e-mail.
type VerifyOTPRequest struct {
	OTP string `json:"otp" binding:"required"`
}

// SessionResponse describes the signed-in user.
type SessionResponse struct {
	UserID         string    `json:"user_id"`
	Email          string    `json:"email,omitempty"`
	OrganizationID string    `json:"organization_id,omitempty"`
	IsSuperAdmin   bool      `json:"is_super_admin"`
	ExpiresAt      time.Time `json:"expires_at,omitzero"`
}

func FromSession(u *appctx.UserContext) SessionResponse {
	return SessionResponse{
		UserID:         u.UserID,
		Email:          u.Email,
		OrganizationID: u.OrganizationID,
		IsSuperAdmin:   u.IsSuperAdmin,
		ExpiresAt:      u.ExpiresAt,
	}
}
