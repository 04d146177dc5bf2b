// Package validation содержит функции валидации входных данных.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MinPasswordLength задаёт минимальную длину пароля.
const MinPasswordLength = 6

// ValidationError описывает некорректное значение поля запроса.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError сообщает, является ли err ошибкой валидации.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// First возвращает первую ненулевую ошибку.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Required проверяет, что строка не пуста после обрезки пробелов.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}
	return nil
}

// MaxLength ограничивает длину строки в символах.
func MaxLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return invalid(field, fmt.Sprintf("must be at most %d characters", limit))
	}
	return nil
}

// Email проверяет адрес электронной почты.
func Email(field, value string) error {
	if err := Required(field, value); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != strings.TrimSpace(value) {
		return invalid(field, "must be a valid e-mail address")
	}
	return nil
}

// NormalizeEmail приводит e-mail к каноническому виду для хранения и поиска.
func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Password проверяет минимальную длину пароля.
func Password(field, value string) error {
	if utf8.RuneCountInString(value) < MinPasswordLength {
		return invalid(field, fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// PositiveDecimal проверяет, что значение строго больше нуля.
func PositiveDecimal(field string, value decimal.Decimal) error {
	if !value.IsPositive() {
		return invalid(field, "must be greater than zero")
	}
	return nil
}

// Разрядность десятичных полей в хранилище.
const (
	QuantityScale     = 3
	QuantityIntDigits = 9
	StockIntDigits    = 11
	MoneyScale        = 2
	PriceIntDigits    = 10
)

// Decimal проверяет, что значение помещается в NUMERIC с maxScale знаками после
// запятой и не более чем maxIntDigits знаками в целой части.
func Decimal(field string, value decimal.Decimal, maxScale int32, maxIntDigits int32) error {
	if !value.Round(maxScale).Equal(value) {
		return invalid(field, fmt.Sprintf("must have at most %d decimal places", maxScale))
	}
	if value.Abs().GreaterThanOrEqual(decimal.New(1, maxIntDigits)) {
		return invalid(field, fmt.Sprintf("must have at most %d integer digits", maxIntDigits))
	}
	return nil
}

// Quantity проверяет количество в килограммах: больше нуля, не точнее граммов.
func Quantity(field string, value decimal.Decimal) error {
	return First(
		PositiveDecimal(field, value),
		Decimal(field, value, QuantityScale, QuantityIntDigits),
	)
}

// StockAmount проверяет остаток в килограммах.
func StockAmount(field string, value decimal.Decimal) error {
	return First(
		NonNegativeDecimal(field, value),
		Decimal(field, value, QuantityScale, StockIntDigits),
	)
}

// Price проверяет цену за килограмм.
func Price(field string, value decimal.Decimal) error {
	return First(
		NonNegativeDecimal(field, value),
		Decimal(field, value, MoneyScale, PriceIntDigits),
	)
}

// NonNegativeDecimal проверяет, что значение не меньше нуля.
func NonNegativeDecimal(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return invalid(field, "must not be negative")
	}
	return nil
}

// NonNegativeInt проверяет, что целое значение не меньше нуля.
func NonNegativeInt(field string, value int64) error {
	if value < 0 {
		return invalid(field, "must not be negative")
	}
	return nil
}

// Latitude проверяет широту.
func Latitude(field string, value float64) error {
	if value < -90 || value > 90 {
		return invalid(field, "must be between -90 and 90")
	}
	return nil
}

// Longitude проверяет долготу.
func Longitude(field string, value float64) error {
	if value < -180 || value > 180 {
		return invalid(field, "must be between -180 and 180")
	}
	return nil
}
