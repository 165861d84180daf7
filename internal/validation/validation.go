package validation

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	pkgerrors "tienda/pkg/errors"
)

var (
	nameRe     = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s]+$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRe    = regexp.MustCompile(`^[678]\d{6,7}$`)
	tagRe      = regexp.MustCompile(`<[^>]*>`)
	symbolRe   = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	spaceRunRe = regexp.MustCompile(`\s+`)
)

const (
	countryPrefix     = "+591"
	minPasswordLength = 8
	MaxCommentLength  = 250
)

// Validator checks storefront input structs. Field errors are reported in
// Spanish as pkgerrors validation errors.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator with the storefront tags registered:
// person_name, bo_phone, store_email and strong_password.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"form", "json"} {
			if tag := strings.SplitN(f.Tag.Get(key), ",", 2)[0]; tag != "" && tag != "-" {
				return tag
			}
		}
		return f.Name
	})

	register := func(tag string, fn func(string) bool) {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		})
	}
	register("person_name", ValidName)
	register("bo_phone", ValidPhone)
	register("store_email", ValidEmail)
	register("strong_password", ValidPassword)

	return &Validator{v: v}
}

// Struct validates s and returns the first failure as a validation error.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, message(errs[0]))
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Datos inválidos")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "person_name":
		return "El nombre solo puede contener letras y espacios"
	case "bo_phone":
		return "Número de teléfono inválido. Debe tener 7 u 8 dígitos y comenzar con 6, 7 u 8"
	case "store_email":
		return "Correo electrónico inválido"
	case "strong_password":
		return "La contraseña debe tener al menos 8 caracteres, una mayúscula, una minúscula, un número y un símbolo"
	case "eqfield":
		return "Las contraseñas no coinciden"
	case "required":
		return "El campo " + fe.Field() + " es obligatorio"
	case "oneof":
		return "Valor no permitido para " + fe.Field()
	case "min", "gte", "gt":
		return "El valor de " + fe.Field() + " es demasiado pequeño"
	case "max", "lte", "lt":
		return "El valor de " + fe.Field() + " es demasiado grande"
	}
	return "El campo " + fe.Field() + " no es válido"
}

// NormalizeName composes accents (NFC), trims and collapses inner whitespace.
func NormalizeName(s string) string {
	s = norm.NFC.String(s)
	return spaceRunRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ValidName accepts letters, Spanish accents and spaces.
func ValidName(s string) bool {
	s = NormalizeName(s)
	return s != "" && nameRe.MatchString(s)
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// NormalizePhone strips spaces and the +591 country prefix.
func NormalizePhone(s string) string {
	s = strings.Join(strings.Fields(s), "")
	return strings.TrimPrefix(s, countryPrefix)
}

// ValidPhone accepts 7 or 8 digit numbers starting with 6, 7 or 8, after
// the country prefix is removed.
func ValidPhone(s string) bool {
	return phoneRe.MatchString(NormalizePhone(s))
}

// ValidPassword requires at least 8 characters with an upper-case letter, a
// lower-case letter, a digit and a symbol.
func ValidPassword(s string) bool {
	if utf8.RuneCountInString(s) < minPasswordLength {
		return false
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit && symbolRe.MatchString(s)
}

// SanitizeComment strips markup tags and surrounding whitespace. Empty or
// over-long bodies are rejected rather than truncated.
func SanitizeComment(s string) (string, error) {
	clean := strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
	if clean == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "El comentario no puede estar vacío")
	}
	if utf8.RuneCountInString(clean) > MaxCommentLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "El comentario no puede superar los 250 caracteres")
	}
	return clean, nil
}
