// README: Shared go-playground validator; field errors are reported by json name.
package booking

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
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

// validateStruct wraps validation failures in ErrBadRequest with a readable field list.
func validateStruct(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fe.Field()+" "+describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrBadRequest, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "contains":
		return "must contain " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must match " + fe.Param()
	default:
		return "is invalid"
	}
}

func validVar(v any, tag string) bool {
	return getValidator().Var(v, tag) == nil
}
