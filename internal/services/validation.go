package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"pharmacy/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json field names so messages match request bodies.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// required accepts whitespace-only strings.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// validateStruct runs tag validation and converts failures into apperr.Validation.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperr.Validation("%s", err.Error())
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:] // drop the top-level struct name
		}
		msgs = append(msgs, fmt.Sprintf("field '%s' failed on the '%s' tag", field, e.Tag()))
	}
	return apperr.Validation("validation failed: %s", strings.Join(msgs, "; "))
}
