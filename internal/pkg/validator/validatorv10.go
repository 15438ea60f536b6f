package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shandysiswandi/pawhaven/internal/pkg/strcase"
)

var (
	// NIST 800-63B length bounds; bcrypt ignores bytes past 72.
	rePassword = regexp.MustCompile(`^.{8,72}$`)
	// RFC 4648 base32 alphabet, unpadded, at least 128 bits.
	reTOTPSecret = regexp.MustCompile(`^[A-Z2-7]{26,}$`)
	reBackupCode = regexp.MustCompile(`^[0-9A-Fa-f]{8}$`)
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError is a field-to-message map returned when validation fails.
//
// Keys are field names in snake_case to match typical JSON conventions.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator constructs a V10Validator with English translations and custom rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// field names in keys and messages match the JSON payload
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strcase.ToLowerSnake(f.Name)
	})

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := v10CustomValidation(validate, enTrans); err != nil {
		return nil, err
	}

	return &V10Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	if err := v.validate.Struct(data); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			return err
		}

		errV10 := make(V10ValidationError)
		for _, fe := range validateErrs {
			errV10[fe.Field()] = fe.Translate(v.translator)
		}

		return errV10
	}

	return nil
}

func v10CustomValidation(validate *validator.Validate, enTrans ut.Translator) error {
	rules := []struct {
		tag     string
		re      *regexp.Regexp
		message string
	}{
		{tag: "password", re: rePassword, message: "{0} must be 8-72 characters"},
		{tag: "totpsecret", re: reTOTPSecret, message: "{0} must be a base32 encoded secret"},
		{tag: "backupcode", re: reBackupCode, message: "{0} must be 8 hexadecimal characters"},
	}

	for _, rule := range rules {
		re := rule.re
		err := validate.RegisterValidation(rule.tag, func(fl validator.FieldLevel) bool {
			v, ok := fl.Field().Interface().(string)
			return ok && re.MatchString(v)
		})
		if err != nil {
			return fmt.Errorf("register %s: %w", rule.tag, err)
		}

		if err := registerMessage(validate, enTrans, rule.tag, rule.message); err != nil {
			return err
		}
	}

	// replaces the stock English text for the built-in rule
	return registerMessage(validate, enTrans, "alphaspace", "{0} can contain only letters and spaces")
}

func registerMessage(validate *validator.Validate, enTrans ut.Translator, tag, message string) error {
	err := validate.RegisterTranslation(tag, enTrans,
		func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		},
		translate,
	)
	if err != nil {
		return fmt.Errorf("translate %s: %w", tag, err)
	}
	return nil
}

func translate(ut ut.Translator, fe validator.FieldError) string {
	t, err := ut.T(fe.Tag(), fe.Field())
	if err != nil {
		slog.Warn("warning: error translating", "FieldError", fe, "error", err)
		return fe.Error()
	}

	return t
}
