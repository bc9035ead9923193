package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var (
	validate = newValidator()
	decoder  = newDecoder()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "schema"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}

		return fld.Name
	})

	return v
}

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

// DecodeJSON reads the body into dst and validates it.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperr.NewValidationError("", "malformed body: "+err.Error())
	}

	return Validate(dst)
}

// DecodeQuery reads the URL query into dst and validates it.
func DecodeQuery(r *http.Request, dst any) error {
	if err := decoder.Decode(dst, r.URL.Query()); err != nil {
		return apperr.NewValidationError("", "malformed query: "+err.Error())
	}

	return Validate(dst)
}

// Validate checks the validate tags of v and reports the first failing field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := strings.SplitN(fe.Namespace(), ".", 2)
		name := fe.Field()
		if len(field) == 2 {
			name = field[1]
		}

		return apperr.NewValidationError(name, reason(fe))
	}

	return apperr.NewValidationError("", err.Error())
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " element(s)"
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
