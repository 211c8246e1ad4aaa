package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"slotbook/internal/calendar"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
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

type CatalogValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCatalogValidator(log *logger.Logger) *CatalogValidator {
	v := validator.New()

	if err := v.RegisterValidation("hhmm", validateClockString); err != nil {
		log.Fatal("Failed to register 'hhmm' validator", "error", err)
	}
	if err := v.RegisterValidation("working_hours", validateWorkingHours); err != nil {
		log.Fatal("Failed to register 'working_hours' validator", "error", err)
	}
	if err := v.RegisterValidation("working_hours_ptr", validateWorkingHoursPtr); err != nil {
		log.Fatal("Failed to register 'working_hours_ptr' validator", "error", err)
	}

	log.Info("Catalog validator initialized successfully")

	return &CatalogValidator{
		validate: v,
		logger:   log,
	}
}

func validateClockString(fl validator.FieldLevel) bool {
	_, _, err := calendar.ParseClock(fl.Field().String())
	return err == nil
}

func validateWorkingHours(fl validator.FieldLevel) bool {
	hours, ok := fl.Field().Interface().(map[string]*model.DayHours)
	if !ok {
		return false
	}
	return workingHoursValid(hours)
}

func validateWorkingHoursPtr(fl validator.FieldLevel) bool {
	hours, ok := fl.Field().Interface().(map[string]*model.DayHours)
	if ok {
		return workingHoursValid(hours)
	}
	ptr, ok := fl.Field().Interface().(*map[string]*model.DayHours)
	if !ok || ptr == nil {
		return false
	}
	return workingHoursValid(*ptr)
}

// workingHoursValid checks that every key names a weekday (0-6) and that
// every non-nil window parses and runs forward. At least one working day
// is required.
func workingHoursValid(hours map[string]*model.DayHours) bool {
	working := 0
	for key, window := range hours {
		day, err := strconv.Atoi(key)
		if err != nil || day < 0 || day > 6 {
			return false
		}
		if window == nil {
			continue
		}
		startH, startM, err := calendar.ParseClock(window.Start)
		if err != nil {
			return false
		}
		endH, endM, err := calendar.ParseClock(window.End)
		if err != nil {
			return false
		}
		if endH*60+endM <= startH*60+startM {
			return false
		}
		working++
	}
	return working > 0
}

func (v *CatalogValidator) ValidateService(service *model.Service) error {
	return v.validateStruct(service)
}

func (v *CatalogValidator) ValidateServiceUpdate(update *model.ServiceUpdate) error {
	return v.validateStruct(update)
}

func (v *CatalogValidator) ValidateSpecialist(specialist *model.Specialist) error {
	return v.validateStruct(specialist)
}

func (v *CatalogValidator) ValidateSpecialistUpdate(update *model.SpecialistUpdate) error {
	return v.validateStruct(update)
}

func (v *CatalogValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *CatalogValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "hhmm":
			message = fmt.Sprintf("%s must be in HH:MM 24-hour format", err.Field())
		case "working_hours", "working_hours_ptr":
			message = "working_hours must map weekdays 0-6 to windows where end is after start, with at least one working day"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
