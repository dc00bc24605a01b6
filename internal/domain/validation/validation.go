// Package validation turns go-playground/validator failures into a single
// structured error that lists every violated field by its JSON name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// Error is returned when one or more fields of an entity are missing or malformed.
type Error struct {
	Entity string
	Fields []FieldError
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field+" "+f.Message)
	}

	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(names, "; "))
}

// Has reports whether field failed validation.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

var (
	once   sync.Once
	engine *validator.Validate
)

// Engine returns the shared validator. It reads `binding` tags, like gin, and
// reports fields by their json names.
func Engine() *validator.Validate {
	once.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())
		engine.SetTagName("binding")
		engine.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return sf.Name
			}
			return name
		})
		if err := engine.RegisterValidation("maxbytes", maxBytes); err != nil {
			panic(err)
		}
	})

	return engine
}

// maxBytes bounds the UTF-8 encoded length of a string. bcrypt rejects
// secrets over 72 bytes, which "max" (a rune count) does not catch.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	return len(fl.Field().String()) <= limit
}

// Struct validates v and returns *Error naming every failed field, or nil.
func Struct(entity string, v any) error {
	err := Engine().Struct(v)
	if err == nil {
		return nil
	}

	if verr := FromValidator(entity, err); verr != nil {
		return verr
	}

	return err
}

// FromValidator converts validator.ValidationErrors; it returns nil for any other error.
func FromValidator(entity string, err error) *Error {
	var validationErrors validator.ValidationErrors

	if !errors.As(err, &validationErrors) {
		return nil
	}

	out := &Error{Entity: entity, Fields: make([]FieldError, 0, len(validationErrors))}

	for _, fe := range validationErrors {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: Message(fe.Tag(), fe.Param()),
		})
	}

	return out
}

// Required builds an *Error for a single missing field.
func Required(entity, field string) *Error {
	return &Error{
		Entity: entity,
		Fields: []FieldError{{Field: field, Rule: "required", Message: Message("required", "")}},
	}
}

func fieldPath(fe validator.FieldError) string {
	// Namespace is "<StructName>.<json>[.<json>...]"
	ns := fe.Namespace()

	if _, rest, ok := strings.Cut(ns, "."); ok && rest != "" {
		return rest
	}

	return fe.Field()
}

func Message(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "maxbytes":
		return "must be at most " + param + " bytes"
	case "len":
		return "must be exactly " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
