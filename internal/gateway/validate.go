package gateway

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// DateValidator accepts calendar dates in YYYY-MM-DD form.
var DateValidator = func(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// NewValidator returns a validator with the gateway's custom rules installed.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("dateformat", DateValidator)
	return v
}
