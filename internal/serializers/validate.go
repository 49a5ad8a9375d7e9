package serializers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator. Field errors are reported under
// their json names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// checkStruct runs the validator over s and adds one message per failing
// field. Fields that already carry an error are skipped, and in partial mode
// so are fields missing from the payload.
func checkStruct(s any, mode Mode, r *fieldReader) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate: %w", err)
	}
	for _, fe := range fieldErrs {
		field := fe.Field()
		if r.errs.Has(field) {
			continue
		}
		if mode == ModePartial && !r.present(field) {
			continue
		}
		r.errs.Add(field, messageFor(fe))
	}
	return nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "email":
		return MsgInvalidEmail
	case "max":
		return fmt.Sprintf(MsgMaxLength, fe.Param())
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
