package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/campusvoice/backend/core"
	"github.com/campusvoice/backend/core/feedback"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email)
	return validate.Struct(lr)
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type SuccessResponse struct {
	Success string `json:"success"`
}

type AnalyticsResponse struct {
	StatusData   []feedback.Count `json:"statusData"`
	CategoryData []feedback.Count `json:"categoryData"`
}
