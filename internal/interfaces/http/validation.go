package http

import (
	"github.com/go-playground/validator/v10"
)

// requestValidator instancia compartida; validator cachea la metadata de cada struct.
var requestValidator = validator.New(validator.WithRequiredStructEnabled())

func validateRequest(v any) error {
	return requestValidator.Struct(v)
}
