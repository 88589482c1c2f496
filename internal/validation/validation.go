// Package validation aplica reglas por campo a datos de formularios.
//
// Los errores de validación no son error de Go: se acumulan y se devuelven
// como valor para volver a renderizar el formulario con los mensajes.
package validation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FieldError describe un problema en un campo del formulario.
type FieldError struct {
	Field   string
	Message string
}

// Errors es la lista de errores en el orden en que se detectaron.
type Errors []FieldError

// Has indica si hay algún error para field.
func (errs Errors) Has(field string) bool {
	for _, fieldError := range errs {
		if fieldError.Field == field {
			return true
		}
	}
	return false
}

// Validator acumula errores. El valor cero está listo para usar.
type Validator struct {
	errors Errors
}

// Valid indica que ninguna regla falló.
func (validator *Validator) Valid() bool {
	return len(validator.errors) == 0
}

// Errors devuelve los errores acumulados (nil si no hay).
func (validator *Validator) Errors() Errors {
	return validator.errors
}

// Check agrega message para field cuando ok es false.
func (validator *Validator) Check(ok bool, field, message string) {
	if !ok {
		validator.errors = append(validator.errors, FieldError{Field: field, Message: message})
	}
}

// Required: el valor (ya recortado) no puede estar vacío.
func (validator *Validator) Required(field, value, message string) {
	validator.Check(value != "", field, message)
}

// MinLength cuenta runas, no bytes.
func (validator *Validator) MinLength(field, value string, min int, message string) {
	validator.Check(utf8.RuneCountInString(value) >= min, field, message)
}

func (validator *Validator) MaxLength(field, value string, max int, message string) {
	validator.Check(utf8.RuneCountInString(value) <= max, field, message)
}

// maxNumberLength acota lo que se parsea: decimal acepta exponentes arbitrarios y
// "1e-50000000" ocupa 11 bytes pero expande a millones de dígitos.
const maxNumberLength = 20

// Decimal parsea un número no negativo en notación decimal simple con a lo sumo places decimales.
// Un valor vacío no se reporta acá (ver Required).
func (validator *Validator) Decimal(field, value string, places int32, message string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	ok := len(value) <= maxNumberLength && !strings.ContainsAny(value, "eE")
	var number decimal.Decimal
	if ok {
		var err error
		number, err = decimal.NewFromString(value)
		ok = err == nil && !number.IsNegative() && number.Equal(number.Truncate(places))
	}
	validator.Check(ok, field, message)
	if !ok {
		return decimal.Zero
	}
	return number
}

// Integer parsea un entero no negativo que entra en 32 bits (columna integer).
// Un valor vacío no se reporta acá (ver Required).
func (validator *Validator) Integer(field, value, message string) int {
	if value == "" {
		return 0
	}
	number, err := strconv.ParseInt(value, 10, 32)
	ok := err == nil && number >= 0
	validator.Check(ok, field, message)
	if !ok {
		return 0
	}
	return int(number)
}

// UUIDs valida que cada id tenga formato UUID y los devuelve en forma canónica.
func (validator *Validator) UUIDs(field string, values []string, message string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		id, err := uuid.Parse(value)
		if err != nil {
			validator.Check(false, field, message)
			return nil
		}
		out = append(out, id.String())
	}
	return out
}

// Trim es el sanitizador común de todos los campos de texto.
func Trim(value string) string {
	return strings.TrimSpace(value)
}
