package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/ttacon/libphonenumber"

	"invoicely/internal/core/apperror"
	"invoicely/internal/core/id"
	"invoicely/pkg/logger"
)

// Step is the position of a registration in the sign-up flow.
type Step string

const (
	StepDetails   Step = "details"
	StepOTPSent   Step = "otp_sent"
	StepVerified  Step = "verified"
	StepCompleted Step = "completed"
)

// DefaultRegion is used to parse phone numbers written without a country prefix.
const DefaultRegion = "IN"

const (
	otpLength        = 6
	passwordMinLen   = 8
	maxOTPAttempts   = 5
	otpResendBackoff = 30 * time.Second
)

var errStale = errors.New("registration changed")

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// Details is the first registration screen.
type Details struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Region           string `json:"region,omitempty"`
	OrganizationName string `json:"organization_name"`
	GSTIN            string `json:"gstin,omitempty"`
	Password         string `json:"password"`
}

// Normalize trims the input and rewrites the phone number in E.164 form.
func (d *Details) Normalize() error {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.OrganizationName = strings.TrimSpace(d.OrganizationName)
	d.GSTIN = strings.ToUpper(strings.TrimSpace(d.GSTIN))
	d.Region = strings.ToUpper(strings.TrimSpace(d.Region))
	if d.Region == "" {
		d.Region = DefaultRegion
	}

	if d.FullName == "" {
		return apperror.NewFieldValidation("full_name", "Full name is required")
	}
	if d.Email == "" {
		return apperror.NewFieldValidation("email", "Email is required")
	}
	if addr, err := mail.ParseAddress(d.Email); err != nil || addr.Address != d.Email {
		return apperror.NewFieldValidation("email", "Enter a valid email address")
	}

	phone, err := normalizePhone(d.Phone, d.Region)
	if err != nil {
		return err
	}
	d.Phone = phone

	if d.OrganizationName == "" {
		return apperror.NewFieldValidation("organization_name", "Organization name is required")
	}
	if d.GSTIN != "" && !gstinPattern.MatchString(d.GSTIN) {
		return apperror.NewFieldValidation("gstin", "Enter a valid 15 character GSTIN")
	}
	if len(d.Password) < passwordMinLen {
		return apperror.NewFieldValidation("password",
			fmt.Sprintf("Password must be at least %d characters", passwordMinLen))
	}
	return nil
}

func normalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperror.NewFieldValidation("phone", "Phone number is required")
	}
	p, err := libphonenumber.Parse(raw, region)
	if err != nil || !libphonenumber.IsValidNumber(p) {
		return "", apperror.NewFieldValidation("phone", "Enter a valid phone number")
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

// Registration is one sign-up in progress.
type Registration struct {
	ID           id.ID     `json:"id"`
	Step         Step      `json:"step"`
	Details      Details   `json:"-"`
	OTPSentAt    time.Time `json:"otp_sent_at,omitzero"`
	OTPAttempts  int       `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	Email        string    `json:"email"`
	Organization string    `json:"organization_name"`
}

// Account is what the backend returns once the organization is created.
type Account struct {
	UserID         id.Ref `json:"user_id"`
	OrganizationID id.Ref `json:"organization_id"`
	Email          string `json:"email"`
}

// RegisterPayload is the backend sign-up body.
type RegisterPayload struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	OrganizationName string `json:"organization_name"`
	GSTIN            string `json:"gstin,omitempty"`
	Password         string `json:"password"`
}

// Backend is the sign-up part of the REST backend.
type Backend interface {
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	Register(ctx context.Context, payload RegisterPayload) (Account, error)
}

// Store keeps registrations between the flow's requests.
//
// Update applies fn to the stored registration atomically and returns the
// result. Nothing is written when fn returns an error.
type Store interface {
	Put(reg Registration)
	Update(regID id.ID, fn func(reg *Registration) error) (Registration, error)
	Delete(regID id.ID)
}

// RegistrationService runs the sign-up steps in order:
// details, OTP request, OTP verification, completion.
type RegistrationService struct {
	backend Backend
	store   Store
	now     func() time.Time
}

// NewRegistrationService creates a registration service.
func NewRegistrationService(backend Backend, store Store) *RegistrationService {
	return &RegistrationService{backend: backend, store: store, now: time.Now}
}

// Start validates the details screen and opens a registration.
func (s *RegistrationService) Start(ctx context.Context, d Details) (Registration, error) {
	if err := d.Normalize(); err != nil {
		return Registration{}, err
	}
	now := s.now().UTC()
	reg := Registration{
		ID:           id.New(),
		Step:         StepDetails,
		Details:      d,
		CreatedAt:    now,
		Email:        d.Email,
		Organization: d.OrganizationName,
	}
	s.store.Put(reg)

	logger.Info(ctx, "registration started", "registration_id", reg.ID)
	return reg, nil
}

// SendOTP asks the backend to mail a code. It may be repeated until the code
// is verified, at most once per resend backoff. The backoff also holds after
// the registration fell back to details on too many wrong codes.
func (s *RegistrationService) SendOTP(ctx context.Context, regID id.ID) (Registration, error) {
	now := s.now().UTC()
	var prev Registration
	reg, err := s.store.Update(regID, func(reg *Registration) error {
		if reg.Step != StepDetails && reg.Step != StepOTPSent {
			return outOfOrder(reg.Step, StepOTPSent)
		}
		if !reg.OTPSentAt.IsZero() && now.Sub(reg.OTPSentAt) < otpResendBackoff {
			return apperror.NewFieldValidation("otp", "Please wait before requesting another code")
		}
		prev = *reg
		reg.Step = StepOTPSent
		reg.OTPSentAt = now
		reg.OTPAttempts = 0
		return nil
	})
	if err != nil {
		return Registration{}, err
	}

	if err := s.backend.RequestOTP(ctx, reg.Details.Email); err != nil {
		// Release the send slot unless another request has moved on since.
		_, _ = s.store.Update(regID, func(reg *Registration) error {
			if !reg.OTPSentAt.Equal(now) {
				return errStale
			}
			reg.Step = prev.Step
			reg.OTPSentAt = prev.OTPSentAt
			reg.OTPAttempts = prev.OTPAttempts
			return nil
		})
		return Registration{}, fmt.Errorf("request otp: %w", err)
	}

	logger.Info(ctx, "registration otp sent", "registration_id", reg.ID)
	return reg, nil
}

// VerifyOTP checks the code with the backend. Each call uses up one attempt
// before the backend is asked. The last allowed attempt moves the registration
// back to the details step, so a new code is required if it fails.
func (s *RegistrationService) VerifyOTP(ctx context.Context, regID id.ID, code string) (Registration, error) {
	code = strings.TrimSpace(code)
	var claimed Registration
	_, err := s.store.Update(regID, func(reg *Registration) error {
		if reg.Step != StepOTPSent {
			return outOfOrder(reg.Step, StepVerified)
		}
		if !isOTP(code) {
			return apperror.NewFieldValidation("otp",
				fmt.Sprintf("Enter the %d digit code", otpLength))
		}
		reg.OTPAttempts++
		if reg.OTPAttempts >= maxOTPAttempts {
			reg.Step = StepDetails
		}
		claimed = *reg
		return nil
	})
	if err != nil {
		return Registration{}, err
	}

	if err := s.backend.VerifyOTP(ctx, claimed.Details.Email, code); err != nil {
		if claimed.Step == StepDetails {
			logger.Warn(ctx, "registration otp attempts exhausted", "registration_id", claimed.ID)
		}
		return Registration{}, fmt.Errorf("verify otp: %w", err)
	}

	reg, err := s.store.Update(regID, func(reg *Registration) error {
		if !reg.OTPSentAt.Equal(claimed.OTPSentAt) {
			return outOfOrder(reg.Step, StepVerified)
		}
		reg.Step = StepVerified
		reg.OTPAttempts = 0
		return nil
	})
	if err != nil {
		return Registration{}, err
	}
	return reg, nil
}

// Complete creates the account and organization. The registration is removed
// once the backend accepts it.
func (s *RegistrationService) Complete(ctx context.Context, regID id.ID) (Account, error) {
	reg, err := s.store.Update(regID, func(reg *Registration) error {
		if reg.Step != StepVerified {
			return outOfOrder(reg.Step, StepCompleted)
		}
		reg.Step = StepCompleted
		return nil
	})
	if err != nil {
		return Account{}, err
	}

	d := reg.Details
	account, err := s.backend.Register(ctx, RegisterPayload{
		FullName:         d.FullName,
		Email:            d.Email,
		Phone:            d.Phone,
		OrganizationName: d.OrganizationName,
		GSTIN:            d.GSTIN,
		Password:         d.Password,
	})
	if err != nil {
		_, _ = s.store.Update(regID, func(reg *Registration) error {
			reg.Step = StepVerified
			return nil
		})
		return Account{}, fmt.Errorf("register: %w", err)
	}

	s.store.Delete(reg.ID)
	logger.Info(ctx, "registration completed",
		"registration_id", reg.ID,
		"organization_id", account.OrganizationID,
	)
	return account, nil
}

func outOfOrder(current, next Step) error {
	return apperror.NewValidation("Registration steps must be completed in order").
		WithDetail("step", string(current)).
		WithDetail("requested", string(next))
}

func isOTP(code string) bool {
	if len(code) != otpLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
