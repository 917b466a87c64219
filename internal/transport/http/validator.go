package http

import (
	"github.com/go-playground/validator/v10"

	"github.com/agricoventas/platform/pkg/errorbank"
)

// requestValidator adapts go-playground/validator to Echo's Validator
// interface, translating field failures into the shared error envelope.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *requestValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errorbank.BadRequest("invalid payload", errorbank.WithCause(err))
	}

	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return errorbank.Unprocessable("validation failed", errorbank.WithDetails(details))
}
