// Package input decodes and validates request bodies. Each route has its own
// input type; Decode either fills it completely or returns a *ValidationError.
package input

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Input is implemented by every request body type.
type Input interface {
	Schema() string
}

type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

func (SignupInput) Schema() string { return "signupInput" }

type SigninInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

func (SigninInput) Schema() string { return "signinInput" }

type CreateBlogInput struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (CreateBlogInput) Schema() string { return "createBlogInput" }

type UpdateBlogInput struct {
	ID      string `json:"id" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (UpdateBlogInput) Schema() string { return "updateBlogInput" }

// ValidationError reports a body that does not match its schema. Fields maps
// the JSON field name to the failed rule; it is empty when the body was not
// valid JSON at all.
type ValidationError struct {
	Schema string
	Fields map[string]string
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("invalid %s: %v", e.Schema, e.Err)
	}
	parts := make([]string, 0, len(e.Fields))
	for field, rule := range e.Fields {
		parts = append(parts, field+" "+rule)
	}
	sort.Strings(parts)
	return fmt.Sprintf("invalid %s: %s", e.Schema, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Decode reads one JSON object from body into dest and validates it.
func Decode[T Input](body io.Reader, dest *T) error {
	schema := (*dest).Schema()
	if err := json.NewDecoder(body).Decode(dest); err != nil {
		return &ValidationError{Schema: schema, Err: err}
	}
	trim(dest)
	if err := validate.Struct(dest); err != nil {
		verr := &ValidationError{Schema: schema, Fields: map[string]string{}, Err: err}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				verr.Fields[fe.Field()] = fe.Tag()
			}
		}
		return verr
	}
	return nil
}

func trim(dest any) {
	switch v := dest.(type) {
	case *SignupInput:
		v.Email = strings.TrimSpace(v.Email)
		v.Name = strings.TrimSpace(v.Name)
	case *SigninInput:
		v.Email = strings.TrimSpace(v.Email)
	case *UpdateBlogInput:
		v.ID = strings.TrimSpace(v.ID)
	}
}
