// Package validation checks an item draft before it is submitted.
package validation

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"tokodash/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Field keys of an ErrorMap.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldQuantity    = "quantity"
	FieldPrice       = "price"
	// FieldGeneral holds failures that belong to no single field.
	FieldGeneral = "general"
)

// Error codes.
const (
	CodeRequired       = "required"
	CodeMustBePositive = "must-be-positive"
	CodeMustBeFinite   = "must-be-finite"
)

// Messages shown for each field and code.
const (
	MsgNameRequired  = "Item name is required"
	MsgPriceRequired = "Price is required"
	MsgPricePositive = "Price must be positive"
	MsgPriceFinite   = "Price must be a finite number"
)

// ErrorMap maps a field key to a human readable message. An empty map means
// the draft is valid.
type ErrorMap map[string]string

// Has reports whether field has an error.
func (m ErrorMap) Has(field string) bool {
	_, ok := m[field]
	return ok
}

// Clone returns a copy of m that is never nil.
func (m ErrorMap) Clone() ErrorMap {
	out := make(ErrorMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var messages = map[string]map[string]string{
	FieldName:  {CodeRequired: MsgNameRequired},
	FieldPrice: {CodeRequired: MsgPriceRequired, CodeMustBePositive: MsgPricePositive, CodeMustBeFinite: MsgPriceFinite},
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate returns the errors of draft: a blank or whitespace-only name, and
// a missing, non-positive or infinite price. Quantity is not checked. draft is
// not modified.
func Validate(draft models.Draft) ErrorMap {
	errs := ErrorMap{}
	if err := validate.Struct(draft); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			errs[FieldGeneral] = err.Error()
			return errs
		}
		for _, fe := range fieldErrors {
			field := fe.Field()
			if msg, ok := messages[field][codeFor(fe.Tag())]; ok {
				errs[field] = msg
			} else {
				errs[field] = field + " is invalid"
			}
		}
	}
	if p := draft.Price; p != nil && !errs.Has(FieldPrice) && !IsFinite(*p) {
		errs[FieldPrice] = MsgPriceFinite
	}
	return errs
}

// IsFinite reports whether f is neither NaN nor an infinity.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func codeFor(tag string) string {
	switch tag {
	case "required", "notblank":
		return CodeRequired
	case "gt":
		return CodeMustBePositive
	}
	return tag
}
