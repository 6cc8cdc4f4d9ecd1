package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return snakeCase(f.Name)
	})
	return v
}

// Struct checks the `validate` tags of an input struct and reports the first violation.
func Struct(s interface{}) error {
	return describe(validate.Struct(s), "")
}

// Var checks a single value against tag, naming it field in the error.
func Var(field string, value interface{}, tag string) error {
	return describe(validate.Var(value, tag), field)
}

func describe(err error, field string) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	name := fe.Field()
	if field != "" {
		name = field
	}
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Errorf("%s is required", name)
	case "email":
		return fmt.Errorf("%s must be a valid email address", name)
	case "max":
		if isString {
			return fmt.Errorf("%s must not exceed %s characters", name, fe.Param())
		}
		return fmt.Errorf("%s must be at most %s", name, fe.Param())
	case "min":
		if isString {
			return fmt.Errorf("%s must be at least %s characters", name, fe.Param())
		}
		return fmt.Errorf("%s must be at least %s", name, fe.Param())
	}
	return fmt.Errorf("%s is invalid (%s)", name, fe.Tag())
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 && !unicode.IsUpper(rune(name[i-1])) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
