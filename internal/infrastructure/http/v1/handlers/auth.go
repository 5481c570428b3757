package handlers

import (
	"github.com/gin-gonic/gin"

	"invoicely/internal/core/apperror"
	appctx "invoicely/internal/core/context"
	"invoicely/internal/domain/auth"
	"invoicely/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles sign-up and the current session.
type AuthHandler struct {
	*BaseHandler
	registration *auth.RegistrationService
}

func NewAuthHandler(base *BaseHandler, registration *auth.RegistrationService) *AuthHandler {
	return &AuthHandler{BaseHandler: base, registration: registration}
}

// RegisterRoutes registers the public sign-up routes and the session route.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/registrations", h.Details)
	public.POST("/registrations/:id/otp", h.SendOTP)
	public.POST("/registrations/:id/verify", h.VerifyOTP)
	public.POST("/registrations/:id/complete", h.Complete)

	protected.GET("/session", h.Session)
}

// Details handles POST /auth/registrations.
func (h *AuthHandler) Details(c *gin.Context) {
	var req auth.Details
	if !h.BindJSON(c, &req) {
		return
	}
	reg, err := h.registration.Start(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromRegistration(reg))
}

// SendOTP handles POST /auth/registrations/:id/otp.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	regID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	reg, err := h.registration.SendOTP(c.Request.Context(), regID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRegistration(reg))
}

// VerifyOTP handles POST /auth/registrations/:id/verify.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	regID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	var req dto.VerifyOTPRequest
	if !h.BindJSON(c, &req) {
		return
	}
	reg, err := h.registration.VerifyOTP(c.Request.Context(), regID, req.OTP)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRegistration(reg))
}

// Complete handles POST /auth/registrations/:id/complete.
func (h *AuthHandler) Complete(c *gin.Context) {
	regID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	account, err := h.registration.Complete(c.Request.Context(), regID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, account)
}

// Session handles GET /auth/session.
func (h *AuthHandler) Session(c *gin.Context) {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		h.Error(c, apperror.NewUnauthorized("Authentication required"))
		return
	}
	h.OK(c, dto.FromSession(user))
}
