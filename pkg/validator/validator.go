// Package validator valida DTOs de entrada con go-playground/validator y traduce el
// primer fallo a *domain.ValidationError, nombrando el campo por su tag json.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/domain"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Nombres de campo según json: "items[1].quantity" en lugar de "Items[1].Quantity".
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

	// decimal.Decimal se valida como número (gt=0, gte=0, lte=100...).
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		id, err := uuid.Parse(s)
		return err == nil && id != uuid.Nil
	})
	return v
}

// ValidateStruct valida data y devuelve nil o el primer fallo como *domain.ValidationError.
func ValidateStruct(data interface{}) error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("", err.Error())
	}
	fe := verrs[0]
	return domain.NewValidationError(fieldPath(fe.Namespace()), message(fe))
}

// fieldPath quita el nombre del struct raíz del namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "requerido"
	case "uuid_required":
		return "debe ser un UUID válido"
	case "gt":
		return fmt.Sprintf("debe ser mayor que %s", fe.Param())
	case "gte":
		return fmt.Sprintf("debe ser mayor o igual que %s", fe.Param())
	case "lte":
		return fmt.Sprintf("debe ser menor o igual que %s", fe.Param())
	case "min":
		return fmt.Sprintf("requiere al menos %s elemento(s)", fe.Param())
	case "oneof":
		return fmt.Sprintf("debe ser uno de: %s", fe.Param())
	}
	return fmt.Sprintf("no cumple la regla %s", fe.Tag())
}
