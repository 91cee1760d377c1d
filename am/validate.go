package am

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/teranos/gmsctl/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report yaml key paths (gms.server) instead of Go field names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			key := strings.TrimPrefix(fe.Namespace(), "Config.")
			return errors.Newf("%s failed the %q check", key, fe.Tag())
		}
		return errors.Wrap(err, "config validation failed")
	}

	// Timeout: 0 = no timeout, negative = invalid
	if c.Gms.Timeout < 0 {
		return errors.Newf("gms.timeout must be >= 0, got %s", c.Gms.Timeout)
	}

	// Rate limit: 0 = unlimited, negative = invalid
	if c.Gms.MaxRequestsPerSecond < 0 {
		return errors.Newf("gms.max_requests_per_second must be >= 0, got %f", c.Gms.MaxRequestsPerSecond)
	}

	return nil
}
