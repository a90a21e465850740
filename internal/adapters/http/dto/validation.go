package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation wraps struct tag failures.
	ErrValidation = errors.New("validation failed")

	// ErrBinding wraps JSON, query and path decoding failures.
	ErrBinding = errors.New("binding failed")
)

// Validator returns the shared validator. Field errors are keyed by the
// json tag so details match the request body.
var Validator = sync.OnceValue(func() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	_ = v.RegisterValidation("notempty", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// posint accepts base-10 integers above zero, as carried by :id.
	_ = v.RegisterValidation("posint", func(fl validator.FieldLevel) bool {
		n, err := strconv.ParseInt(fl.Field().String(), 10, 64)
		return err == nil && n > 0
	})

	return v
})

// Validate checks v's struct tags.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindAndValidate decodes the JSON body into v and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	return bindAndValidate(c.ShouldBindJSON, v)
}

// BindQueryAndValidate decodes the query string into v and validates it.
func BindQueryAndValidate(c *gin.Context, v any) error {
	return bindAndValidate(c.ShouldBindQuery, v)
}

// BindURIAndValidate decodes path parameters into v and validates it.
func BindURIAndValidate(c *gin.Context, v any) error {
	return bindAndValidate(c.ShouldBindUri, v)
}

func bindAndValidate(bind func(any) error, v any) error {
	if err := bind(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// FieldMessages is implemented by request types that override the generic
// validation messages. Keys are "<field>.<tag>", e.g. "title.required".
type FieldMessages interface {
	FieldMessages() map[string]string
}

// ValidationErrorsFor returns one message per failing field, preferring the
// overrides of req when it implements FieldMessages.
func ValidationErrorsFor(req any, err error) map[string]string {
	details := make(map[string]string)

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return details
	}

	var overrides map[string]string
	if fm, ok := req.(FieldMessages); ok {
		overrides = fm.FieldMessages()
	}

	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, seen := details[field]; seen {
			continue
		}

		if msg, ok := overrides[field+"."+fe.Tag()]; ok {
			details[field] = msg
			continue
		}

		details[field] = validationMessage(fe)
	}

	return details
}

// validationMessages are the fallbacks; {param} is the tag parameter.
var validationMessages = map[string]string{
	"required": "this field is required",
	"posint":   "must be a positive integer",
	"notempty": "must not be empty",
	"gte":      "must be greater than or equal to {param}",
	"lte":      "must be less than or equal to {param}",
	"gt":       "must be greater than {param}",
	"lt":       "must be less than {param}",
	"oneof":    "must be one of: {param}",
}

func validationMessage(fe validator.FieldError) string {
	tag := fe.Tag()

	switch tag {
	case "min", "max":
		bound := "at least"
		if tag == "max" {
			bound = "at most"
		}

		msg := "must be " + bound + " " + fe.Param()
		if fe.Kind() == reflect.String {
			msg += " characters"
		}

		return msg
	}

	if msg, ok := validationMessages[tag]; ok {
		return strings.ReplaceAll(msg, "{param}", fe.Param())
	}

	return "failed validation: " + tag
}
