// AngelaMos | 2026
// validate.go

package model

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/currency-tracker/internal/core"
)

var (
	validate       = validator.New(validator.WithRequiredStructEnabled())
	versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

type currencyFields struct {
	NumCode  string  `validate:"len=3,number"`
	CharCode string  `validate:"len=3,alpha"`
	Name     string  `validate:"required"`
	Value    float64 `validate:"gt=0"`
	Nominal  int     `validate:"gt=0"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), core.ErrInvalidInput)
}

func NewAuthor(name, group string) (Author, error) {
	name, group = strings.TrimSpace(name), strings.TrimSpace(group)
	if name == "" {
		return Author{}, invalid("author name must not be empty")
	}
	if group == "" {
		return Author{}, invalid("author group must not be empty")
	}
	return Author{Name: name, Group: group}, nil
}

func NewApp(name, version string, author Author) (App, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return App{}, invalid("app name must not be empty")
	}
	if !versionPattern.MatchString(version) {
		return App{}, invalid("app version %q must have the form X.Y.Z", version)
	}
	if _, err := NewAuthor(author.Name, author.Group); err != nil {
		return App{}, err
	}
	return App{Name: name, Version: version, Author: author}, nil
}

// ValidateName trims a user name and rejects blank input.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name must not be empty")
	}
	return name, nil
}

func NewUser(name string) (User, error) {
	name, err := ValidateName(name)
	if err != nil {
		return User{}, err
	}
	return User{Name: name}, nil
}

func NormalizeCharCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsCharCode reports whether code is a three-letter upper-case ISO code.
func IsCharCode(code string) bool {
	return validate.Var(code, "len=3,alpha,uppercase") == nil
}

func ValidateRate(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return invalid("rate value must be a positive number, got %v", value)
	}
	return nil
}

func NewCurrency(
	numCode, charCode, name string,
	value float64,
	nominal int,
) (Currency, error) {
	c := Currency{
		NumCode:  strings.TrimSpace(numCode),
		CharCode: NormalizeCharCode(charCode),
		Name:     strings.TrimSpace(name),
		Value:    value,
		Nominal:  nominal,
	}

	if err := ValidateCurrency(c); err != nil {
		return Currency{}, err
	}

	return c, nil
}

func ValidateCurrency(c Currency) error {
	if err := ValidateRate(c.Value); err != nil {
		return err
	}

	err := validate.Struct(currencyFields{
		NumCode:  c.NumCode,
		CharCode: c.CharCode,
		Name:     strings.TrimSpace(c.Name),
		Value:    c.Value,
		Nominal:  c.Nominal,
	})
	if err != nil {
		return fmt.Errorf("currency %s: %s: %w",
			c.CharCode, core.FormatValidationError(err), core.ErrInvalidInput)
	}

	return nil
}

// Normalize trims and upper-cases the set fields and validates each of them.
func (u CurrencyUpdate) Normalize() (CurrencyUpdate, error) {
	out := u

	if u.NumCode != nil {
		v := strings.TrimSpace(*u.NumCode)
		if err := validate.Var(v, "len=3,number"); err != nil {
			return CurrencyUpdate{}, invalid("num_code must be exactly 3 digits")
		}
		out.NumCode = &v
	}

	if u.CharCode != nil {
		v := NormalizeCharCode(*u.CharCode)
		if err := validate.Var(v, "len=3,alpha"); err != nil {
			return CurrencyUpdate{}, invalid("char_code must be exactly 3 letters")
		}
		out.CharCode = &v
	}

	if u.Name != nil {
		v := strings.TrimSpace(*u.Name)
		if v == "" {
			return CurrencyUpdate{}, invalid("name must not be empty")
		}
		out.Name = &v
	}

	if u.Value != nil {
		if err := ValidateRate(*u.Value); err != nil {
			return CurrencyUpdate{}, err
		}
	}

	if u.Nominal != nil && *u.Nominal <= 0 {
		return CurrencyUpdate{}, invalid("nominal must be a positive integer")
	}

	return out, nil
}
