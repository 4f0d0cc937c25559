// Package validate wraps go-playground/validator for the daemon config, the
// CLI flags and batch submissions.
//
// Besides the built-in tags, two domain tags are registered:
//   - store: a store host or an http(s) URL without a path
//   - variant_id: a positive decimal product variant id
package validate

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	v := validator.New()
	must(v.RegisterValidation("store", func(fl validator.FieldLevel) bool {
		return StoreAddress(fl.Field().String()) == nil
	}))
	must(v.RegisterValidation("variant_id", func(fl validator.FieldLevel) bool {
		return VariantID(fl.Field().String()) == nil
	}))
	validate = v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ValidateField validates a single value against validator tags.
//
// Example: ValidateField(cfg.Concurrency, "min=1,max=64")
func ValidateField(value any, tag string) error {
	return validate.Var(value, tag)
}

// ValidateStruct validates a struct using its `validate` tags.
func ValidateStruct(s any) error {
	return validate.Struct(s)
}

// ValidatePortRange rejects port 0 along with out of range ports, since the
// CLI needs a predictable address to reach the daemon.
func ValidatePortRange(port int) error {
	return ValidateField(port, "required,min=1,max=65535")
}

func ValidateRequiredString(value, fieldName string) error {
	if err := ValidateField(value, "required"); err != nil {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}
