package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// validate reports fields by their koanf key so messages match the YAML
// files and APP_ environment variables operators actually edit.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return toSnake(f.Name)
		}

		return name
	})

	return v
}

// Validate checks the loaded configuration. The service refuses to start
// on any failure.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(msgs, "\n  "))
}

// describe renders one failure as "key (ENV_VAR) problem".
func describe(fe validator.FieldError) string {
	key := keyPath(fe.Namespace())
	subject := fmt.Sprintf("%s (%s)", key, envName(key))

	switch fe.Tag() {
	case "required":
		return subject + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", subject, toSnake(fe.Param()))
	case "min":
		return fmt.Sprintf("%s must be at least %s", subject, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", subject, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", subject, fe.Param())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", subject, sibling(key, fe.Param()))
	case "url":
		return subject + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed %q check", subject, fe.Tag())
	}
}

// keyPath drops the root struct name: "Config.database.max_open_conns"
// becomes "database.max_open_conns".
func keyPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}

	return namespace
}

// envName is the APP_ variable that sets key.
func envName(key string) string {
	return "APP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// sibling resolves a cross-field tag parameter, a Go field name, to the
// koanf key next to key.
func sibling(key, field string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		return key[:i+1] + toSnake(field)
	}

	return toSnake(field)
}

// toSnake converts MaxOpenConns to max_open_conns.
func toSnake(name string) string {
	var b strings.Builder

	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (unicode.IsLower(runes[i-1]) || nextLower) {
				b.WriteByte('_')
			}

			r = unicode.ToLower(r)
		}

		b.WriteRune(r)
	}

	return b.String()
}
