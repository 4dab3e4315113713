package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/alzy/commerce-api/internal/auth"
	"github.com/go-playground/validator/v10"
)

const passwordSpecialChars = "$%&!:"

var (
	phonePattern = regexp.MustCompile(`^\+7\d{10}$`)
	validate     = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag, which these are not.
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return passwordProblem(fl.Field().String()) == ""
	})
	return v
}

// passwordProblem returns a description of the first password rule the
// candidate breaks, or "" when it satisfies all of them.
func passwordProblem(password string) string {
	if len([]rune(password)) < 8 {
		return "password must be at least 8 characters"
	}
	if len(password) > auth.MaxPasswordBytes {
		return "password must be at most 72 bytes"
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		return "password must contain at least one uppercase letter"
	}
	if !strings.ContainsAny(password, passwordSpecialChars) {
		return "password must contain at least one of " + passwordSpecialChars
	}
	return ""
}

// validateStruct runs the struct's validate tags and converts the first
// failure into a *ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return invalid(fe.Field(), ruleMessage(fe))
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be +7 followed by 10 digits"
	case "password":
		return passwordProblem(fe.Value().(string))
	case "eqfield":
		return "passwords do not match"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
