package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"hearth/pkg/logger"
	"hearth/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type DispatchValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewDispatchValidator(log *logger.Logger) *DispatchValidator {
	v := validator.New()

	if err := v.RegisterValidation("positive_amount", validatePositiveAmount); err != nil {
		log.Fatal("Failed to register 'positive_amount' validator",
			"error", err,
		)
	}

	log.Info("Dispatch validator initialized successfully")

	return &DispatchValidator{
		validate: v,
		logger:   log,
	}
}

func (v *DispatchValidator) ValidateRejection(req *model.RejectionRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func validatePositiveAmount(fl validator.FieldLevel) bool {
	amount, err := strconv.ParseFloat(fl.Field().String(), 64)
	if err != nil {
		return false
	}
	return amount > 0
}

func (v *DispatchValidator) ValidateProposal(req *model.ProposalRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *DispatchValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "positive_amount":
			message = fmt.Sprintf("%s must be a number greater than zero", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
