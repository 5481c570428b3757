// Package handlers provides the gateway's HTTP handlers.
package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"invoicely/internal/core/apperror"
	"invoicely/internal/core/id"
)

var tagNameOnce sync.Once

// useJSONFieldNames makes validation errors report the JSON field name the
// browser sent rather than the Go field name.
func useJSONFieldNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	useJSONFieldNames()
	return &BaseHandler{}
}

// BindJSON binds the request body. On failure the error is recorded and false
// is returned.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperror.NewFieldValidation(fe.Field(), fieldMessage(fe)).
			WithDetail("rule", fe.Tag())
	}
	return apperror.NewValidation("Invalid request body").WithDetail("error", err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}

// RefParam reads a backend key from the path.
func (h *BaseHandler) RefParam(c *gin.Context, name string) (id.Ref, bool) {
	v := strings.TrimSpace(c.Param(name))
	if v == "" {
		h.Error(c, apperror.NewFieldValidation(name, name+" is required"))
		return "", false
	}
	return id.Ref(v), true
}

// IDParam reads a gateway UUID from the path.
func (h *BaseHandler) IDParam(c *gin.Context, name string) (id.ID, bool) {
	v, err := id.Parse(c.Param(name))
	if err != nil {
		h.Error(c, apperror.NewFieldValidation(name, "invalid "+name+" format"))
		return id.ID{}, false
	}
	return v, true
}

// Error records err for middleware.ErrorHandler and aborts the request.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}
