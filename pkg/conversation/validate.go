package conversation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var ErrValidation = errors.New("invalid input")

var (
	serialPattern    = regexp.MustCompile(`^[a-zA-Z0-9_\-\. :/]+$`)
	inventoryPattern = regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ0-9_\-\./ ]+$`)
	sqlKeywords      = map[string]bool{"SELECT": true, "INSERT": true, "UPDATE": true, "DELETE": true, "DROP": true, "UNION": true, "EXEC": true}
)

type fieldValidator struct {
	v *validator.Validate
}

func newFieldValidator() *fieldValidator {
	v := validator.New()
	_ = v.RegisterValidation("serial", func(fl validator.FieldLevel) bool {
		return serialPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("invno", func(fl validator.FieldLevel) bool {
		return inventoryPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("person", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if strings.ContainsAny(s, "<>\"'&;|`\r\n") {
			return false
		}
		// Keywords count only as whole words, so names like "Dropkin" pass.
		words := strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			if sqlKeywords[w] {
				return false
			}
		}
		return true
	})
	return &fieldValidator{v: v}
}

func (f *fieldValidator) check(value, tag, message string) (string, error) {
	value = strings.TrimSpace(value)
	if err := f.v.Var(value, tag); err != nil {
		return "", fmt.Errorf("%w: %s", ErrValidation, message)
	}
	return value, nil
}

func (f *fieldValidator) Serial(v string) (string, error) {
	return f.check(v, "required,max=50,serial", "a serial number is 1-50 latin letters, digits, dashes or dots")
}

func (f *fieldValidator) Person(v string) (string, error) {
	return f.check(v, "required,min=2,max=100,person", "a name is 2-100 characters without special symbols")
}

func (f *fieldValidator) InventoryNumber(v string) (string, error) {
	return f.check(v, "required,max=50,invno", "an inventory number is up to 50 letters, digits, dashes, dots or slashes")
}

func (f *fieldValidator) IP(v string) (string, error) {
	return f.check(v, "required,ip", "expected an IPv4 or IPv6 address")
}

func (f *fieldValidator) Text(v string) (string, error) {
	return f.check(v, "required,max=500", "the text must be 1-500 characters")
}

func (f *fieldValidator) Name(v string) (string, error) {
	return f.check(v, "required,max=200", "the value must be 1-200 characters")
}

// userMessage returns the part of a validation error meant for the operator.
func userMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 && errors.Is(err, ErrValidation) {
		return strings.ToUpper(msg[i+2:i+3]) + msg[i+3:] + "."
	}
	return msg
}
