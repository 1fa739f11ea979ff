// Package validation wraps go-playground/validator with English messages
// keyed by JSON field name.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

const requiredText = "this field is required"

// Validator validates tagged structs and reports field-level failures.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New instantiates a Validator with English translations.
func New() *Validator {
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerTranslation(validate, translator, "required", requiredText)
	registerEnum(validate, translator, "ticket_status", domain.TicketStatuses, func(v string) bool {
		return domain.TicketStatus(v).Valid()
	})
	registerEnum(validate, translator, "ticket_priority", domain.TicketPriorities, func(v string) bool {
		return domain.TicketPriority(v).Valid()
	})
	registerEnum(validate, translator, "ticket_category", domain.TicketCategories, func(v string) bool {
		return domain.TicketCategory(v).Valid()
	})
	registerEnum(validate, translator, "user_role", domain.Roles, func(v string) bool {
		return domain.Role(v).Valid()
	})

	return &Validator{validate: validate, translator: translator}
}

// Struct validates s. Failures come back as a VALIDATION_FAILED DomainError
// whose details map each JSON field name to a message.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewInternalError(err)
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Translate(v.translator)
	}
	return apperrors.NewValidationError("validation failed", details)
}

// registerEnum adds a string tag backed by a domain Valid method. Empty
// values pass so that "required" reports them instead.
func registerEnum[T ~string](validate *validator.Validate, translator ut.Translator, tag string, values []T, valid func(string) bool) {
	_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return v == "" || valid(v)
	})

	names := make([]string, 0, len(values))
	for _, v := range values {
		names = append(names, string(v))
	}
	registerTranslation(validate, translator, tag, "must be one of: "+strings.Join(names, ", "))
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
