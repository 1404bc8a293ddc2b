// Package validation wraps go-playground/validator with the project's custom
// rules and human readable, field keyed error messages.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
)

var usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)

var messages = map[string]string{
	"required":    "This field is required.",
	"email":       "Enter a valid email address.",
	"max":         "Ensure this field has no more than {0} characters.",
	"gte":         "Ensure this value is greater than or equal to {0}.",
	"oneof":       "Select a valid choice. That choice is not one of the available choices.",
	"hexadecimal": "Enter a valid hexadecimal number.",
	"uuid":        "Enter a valid identifier.",
	"datetime":    "Enter a valid date.",
	"username":    "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.",
	"clock":       "Enter a valid time.",
}

// Validator is a validator instance bound to its own translator.
type Validator struct {
	*validator.Validate
	trans ut.Translator
}

// New builds a Validator with json field names and the custom rules registered.
func New() *Validator {
	validate := validator.New()
	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, ok := ParseClock(fl.Field().String())
		return ok
	})

	for tag, text := range messages {
		if err := registerMessage(validate, trans, tag, text); err != nil {
			panic("validation: register " + tag + " message: " + err.Error())
		}
	}

	return &Validator{Validate: validate, trans: trans}
}

func registerMessage(validate *validator.Validate, trans ut.Translator, tag, text string) error {
	return validate.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, err := t.T(tag, fe.Param())
			if err != nil {
				return fe.Error()
			}
			return s
		},
	)
}

// Errors converts validator failures into a field -> messages mapping.
func (v *Validator) Errors(err error) map[string][]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string][]string{appErrors.NonFieldErrors: {err.Error()}}
	}
	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if field == "" {
			field = appErrors.NonFieldErrors
		}
		out[field] = append(out[field], fe.Translate(v.trans))
	}
	return out
}

// Check validates s and returns a VALIDATION_ERROR carrying field details, or nil.
func (v *Validator) Check(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid validation target")
	}
	return appErrors.WithDetails(appErrors.ErrValidation, v.Errors(err))
}

// ParseClock accepts HH:MM or HH:MM:SS and returns the canonical HH:MM:SS form.
func ParseClock(raw string) (string, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04:05"), true
		}
	}
	return "", false
}
