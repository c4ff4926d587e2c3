// Package apperror provides the typed error taxonomy and validation error mapping.
package apperror

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// AuthError indicates the session is no longer valid (HTTP 401). The caller
// must re-authenticate.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// CsrfError indicates the anti-forgery token was rejected (HTTP 403). The
// cached token has already been cleared; the caller decides whether to retry.
type CsrfError struct {
	Message   string
	Retryable bool
}

func (e *CsrfError) Error() string { return e.Message }

// RateLimitError indicates the backend throttled the request (HTTP 429).
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string { return e.Message }

// TransportError covers network failures and any other non-2xx response. The
// message is the server's when one was present, else an operation-specific
// fallback.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string { return e.Message }

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError is raised client-side before any network call is made.
type ValidationError struct {
	Fields []map[string]string
}

func (e *ValidationError) Error() string {
	for _, f := range e.Fields {
		for name, msg := range f {
			return fmt.Sprintf("%s %s", name, msg)
		}
	}
	return "validation failed"
}

var (
	errRequired          = errors.New("is required")
	errMustBePositive    = errors.New("must be a positive number")
	errMustNotBeNegative = errors.New("must not be negative")
	errInvalidDate       = errors.New("must be a date in YYYY-MM-DD format")
	errInvalidEmail      = errors.New("must be a valid email address")
	errPasswordTooShort  = errors.New("must be at least 8 characters long")
	errUsernameTooShort  = errors.New("must be at least 3 characters long")
)

var customErrors = map[string]error{
	"NewFoodEntry.FoodID.required":      errRequired,
	"NewFoodEntry.Name.required":        errRequired,
	"NewFoodEntry.Name.min":             errRequired,
	"NewFoodEntry.AmountGrams.required": errRequired,
	"NewFoodEntry.AmountGrams.gt":       errMustBePositive,
	"NewFoodEntry.Date.required":        errRequired,
	"NewFoodEntry.Date.dateformat":      errInvalidDate,
	"NewFoodEntry.Calories.gte":         errMustNotBeNegative,
	"NewFoodEntry.Protein.gte":          errMustNotBeNegative,
	"NewFoodEntry.Carbs.gte":            errMustNotBeNegative,
	"NewFoodEntry.Fat.gte":              errMustNotBeNegative,
	"UserGoals.TargetCalories.gte":      errMustNotBeNegative,
	"UserGoals.TargetProtein.gte":       errMustNotBeNegative,
	"UserGoals.TargetCarbs.gte":         errMustNotBeNegative,
	"UserGoals.TargetFats.gte":          errMustNotBeNegative,
	"UserGoals.TargetWeight.gte":        errMustNotBeNegative,
	"Credentials.Email.required":        errRequired,
	"Credentials.Email.email":           errInvalidEmail,
	"Credentials.Password.required":     errRequired,
	"Credentials.Password.min":          errPasswordTooShort,
	"Registration.Email.required":       errRequired,
	"Registration.Email.email":          errInvalidEmail,
	"Registration.Username.required":    errRequired,
	"Registration.Username.min":         errUsernameTooShort,
	"Registration.Password.required":    errRequired,
	"Registration.Password.min":         errPasswordTooShort,
}

// CustomValidationError converts validator errors into a standardized format.
func CustomValidationError(err error) []map[string]string {
	errList := make([]map[string]string, 0)

	var validationErr validator.ValidationErrors

	switch {
	case errors.As(err, &validationErr):
		for _, e := range validationErr {
			field := e.StructNamespace()
			key := field + "." + e.Tag()

			errMsg := fmt.Sprintf("%s is invalid", field)
			if v, ok := customErrors[key]; ok {
				errMsg = v.Error()
			}

			errList = append(errList, map[string]string{e.Field(): errMsg})
		}
	}
	return errList
}

// NewValidation wraps a validator result in a ValidationError.
func NewValidation(err error) *ValidationError {
	return &ValidationError{Fields: CustomValidationError(err)}
}

// IsRetryable reports whether a failed call may be re-attempted without user
// intervention. Auth, CSRF and validation outcomes are never retried blindly.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Status == 0 || te.Status >= 500
	}
	return false
}
