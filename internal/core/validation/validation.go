package validation

import (
	"fmt"
	"time"

	errors "github.com/yakey01/dokterku-sub009/internal"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
	errors []errors.ValidationError
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
		errors: make([]errors.ValidationError, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if v == "" {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case int64:
			if v == 0 {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case *int64:
			if v == nil || *v == 0 {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case time.Time:
			if v.IsZero() {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || *v == "" {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Positive() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case int64:
			if v <= 0 {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must be positive", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case float64:
			if v <= 0 {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must be positive", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if s, ok := value.(string); ok && len(s) > max {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must be at most %d characters", fv.FieldName, max), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) NotFuture() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if t, ok := value.(time.Time); ok && t.After(time.Now()) {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s cannot be in the future", fv.FieldName), errors.ErrCodeInvalidTanggal)
		}
		return nil
	})
	return fv
}

// Validate runs all registered field validators and collects failures into a
// single AppError, or returns nil when everything passed.
func (v *ValidationBuilder) Validate() *errors.AppError {
	for _, field := range v.fields {
		for _, validate := range field.Validators {
			if appErr := validate(field.Value); appErr != nil {
				if ve, ok := appErr.Details.(errors.ValidationErrors); ok {
					v.errors = append(v.errors, ve.Errors...)
				}
			}
		}
	}

	if len(v.errors) == 0 {
		return nil
	}

	return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
		WithDetails(errors.ValidationErrors{Errors: v.errors})
}
