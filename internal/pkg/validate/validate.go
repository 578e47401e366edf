package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/ainager-onboarding/internal/domain"
	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Struct.
var v = validator.New()

func init() {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("otpcode", func(fl validator.FieldLevel) bool {
		return IsOTPCode(fl.Field().String())
	})
}

// IsOTPCode reports whether s is exactly six ASCII digits.
func IsOTPCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Struct validates the given struct using its validate tags.
// The returned error wraps domain.ErrValidation with a human-readable message.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), domain.ErrValidation)
	}
	return nil
}
