package entities

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Price limits mirror a DECIMAL(10,2) column.
const (
	PriceMaxDigits     = 10
	PriceDecimalPlaces = 2
)

var (
	ErrInvalidPrice       = errors.New("A valid number is required.")
	ErrPriceDecimalPlaces = fmt.Errorf("Ensure that there are no more than %d decimal places.", PriceDecimalPlaces)
	ErrPriceMaxDigits     = fmt.Errorf("Ensure that there are no more than %d digits in total.", PriceMaxDigits)
	ErrPriceWholeDigits   = fmt.Errorf("Ensure that there are no more than %d digits before the decimal point.", PriceMaxDigits-PriceDecimalPlaces)
)

// Price is a fixed-point amount with two decimal places, held as integer cents.
// It is encoded in JSON as a string ("19.99") and stored as an integer column.
type Price int64

// NewPrice builds a price from whole units and cents, e.g. NewPrice(19, 99).
func NewPrice(units int64, cents int64) Price {
	if units < 0 {
		return Price(units*100 - cents)
	}
	return Price(units*100 + cents)
}

// ParsePrice parses a decimal string such as "19.99", "20" or "-3.5".
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidPrice
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, ErrInvalidPrice
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, ErrInvalidPrice
	}

	whole = strings.TrimLeft(whole, "0")
	if len(frac) > PriceDecimalPlaces {
		return 0, ErrPriceDecimalPlaces
	}
	if len(whole)+len(frac) > PriceMaxDigits {
		return 0, ErrPriceMaxDigits
	}
	if len(whole) > PriceMaxDigits-PriceDecimalPlaces {
		return 0, ErrPriceWholeDigits
	}

	frac += strings.Repeat("0", PriceDecimalPlaces-len(frac))
	if whole == "" {
		whole = "0"
	}
	cents, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	if negative {
		cents = -cents
	}
	return Price(cents), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Cents returns the amount in cents.
func (p Price) Cents() int64 {
	return int64(p)
}

func (p Price) String() string {
	cents := int64(p)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

// UnmarshalJSON accepts both "19.99" and 19.99.
func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return ErrInvalidPrice
		}
		raw = unquoted
	}
	parsed, err := ParsePrice(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Price) Value() (driver.Value, error) {
	return int64(p), nil
}

func (p *Price) Scan(value any) error {
	switch v := value.(type) {
	case int64:
		*p = Price(v)
	case float64:
		*p = Price(int64(v))
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("scan price: %w", err)
		}
		*p = Price(n)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("scan price: %w", err)
		}
		*p = Price(n)
	default:
		return fmt.Errorf("scan price: unsupported type %T", value)
	}
	return nil
}

func (Price) GormDataType() string {
	return "integer"
}
