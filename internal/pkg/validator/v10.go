package validator

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"
)

// ErrTranslatorNotFound indicates the English translator could not be built.
var ErrTranslatorNotFound = errors.New("validator: translator not found")

// Rule is a custom string tag. Check receives the field value.
type Rule struct {
	Tag     string
	Message string
	Check   func(value string) bool
}

// ValidationError maps snake_case field names to messages.
type ValidationError map[string]string

func (ve ValidationError) Error() string {
	if len(ve) == 0 {
		return "validation error"
	}
	b, _ := json.Marshal(map[string]string(ve))
	return string(b)
}

// Values returns the field error map.
func (ve ValidationError) Values() map[string]string {
	return ve
}

// V10 implements Validator using go-playground/validator v10.
type V10 struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewV10 builds a validator with the built-in tags, timeofday, timezone and
// any extra rules.
func NewV10(rules ...Rule) (*V10, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	trans, ok := ut.New(enLang, enLang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	builtin := []Rule{
		{Tag: "timeofday", Message: "{0} must be a time of day formatted HH:MM or HH:MM:SS", Check: IsTimeOfDay},
		{Tag: "timezone", Message: "{0} must be an IANA time zone name", Check: IsTimezone},
	}
	for _, r := range append(builtin, rules...) {
		if err := register(validate, trans, r); err != nil {
			return nil, err
		}
	}

	return &V10{validate: validate, translator: trans}, nil
}

func register(validate *validator.Validate, trans ut.Translator, r Rule) error {
	check := r.Check
	err := validate.RegisterValidation(r.Tag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && check(s)
	})
	if err != nil {
		return err
	}

	return validate.RegisterTranslation(r.Tag, trans,
		func(t ut.Translator) error {
			return t.Add(r.Tag, r.Message, false)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(fe.Tag(), fe.Field())
			if err != nil {
				slog.Warn("failed to translate validation error", "tag", fe.Tag(), "error", err)
				return fe.Error()
			}
			return msg
		},
	)
}

// Validate returns a ValidationError when data violates its tags.
func (v *V10) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[lo.SnakeCase(fe.Field())] = fe.Translate(v.translator)
	}
	return out
}

// IsTimeOfDay reports whether s is HH:MM or HH:MM:SS on a 24 hour clock.
func IsTimeOfDay(s string) bool {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if len(s) != len(layout) {
			continue
		}
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// IsTimezone reports whether s names a zone known to the tz database.
// The empty string is rejected even though time.LoadLocation maps it to UTC.
func IsTimezone(s string) bool {
	if s == "" {
		return false
	}
	_, err := time.LoadLocation(s)
	return err == nil
}
