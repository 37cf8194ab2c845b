package types

import (
	stderrors "errors"
	"fmt"
	"strings"

	"keyplan/internal/errors"

	"github.com/go-playground/validator/v10"
)

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the request's field constraints
func (r PlanRequest) Validate() error { return validateStruct(r) }

// Validate checks the request's field constraints and the batch size limit
func (r BatchPlanRequest) Validate(maxJobs int) error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if maxJobs > 0 && len(r.Jobs) > maxJobs {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("batch holds %d jobs, limit is %d", len(r.Jobs), maxJobs), nil).
			WithContext("jobs", len(r.Jobs))
	}
	return nil
}

// Validate checks the request's field constraints
func (r MatchRequest) Validate() error { return validateStruct(r) }

// Validate checks the request's field constraints
func (r ValidateRequest) Validate() error { return validateStruct(r) }

func validateStruct(v any) error {
	err := requestValidator.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "invalid request", err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describeFieldError(fe))
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, strings.Join(problems, "; "), err)
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s exceeds the maximum of %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
