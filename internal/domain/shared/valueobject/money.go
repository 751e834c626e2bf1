package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	ARS Currency = "ARS" // Argentine Peso (default)
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// DefaultCurrency is the ledger currency
const DefaultCurrency = ARS

// CurrencyPlaces is the number of decimal places money is stored and rounded to
const CurrencyPlaces int32 = 2

var (
	hundred = decimal.NewFromInt(100)
	oneCent = decimal.New(1, -CurrencyPlaces)
)

// RoundCurrency rounds half-up (half away from zero) to currency precision
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// HasCurrencyPrecision reports whether d fits currency precision as is.
// Trailing zeros do not count, so 1.500 fits and 0.004 does not.
func HasCurrencyPrecision(d decimal.Decimal) bool {
	return d.Equal(RoundCurrency(d))
}

// Money is an immutable monetary amount
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromString parses an amount in the default currency
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return Money{amount: d, currency: DefaultCurrency}, nil
}

// MustMoney builds Money in the default currency from a literal; it panics on
// malformed input and is intended for constants and tests.
func MustMoney(amount string) Money {
	m, err := NewMoneyFromString(amount)
	if err != nil {
		panic(err)
	}
	return m
}

// Of wraps a decimal in the default currency
func Of(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: DefaultCurrency}
}

// Zero returns zero money in the given currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("currency mismatch: %s vs %s", m.currency, other.currency)
	}
	return nil
}

// Add returns m + other
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns m - other
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Abs returns the absolute value
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs(), currency: m.currency}
}

// Negate flips the sign
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Round rounds to currency precision, half-up
func (m Money) Round() Money {
	return Money{amount: RoundCurrency(m.amount), currency: m.currency}
}

// Compare returns -1, 0 or 1
func (m Money) Compare(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

// Equals reports equality of amount and currency
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Percentage returns rate% of the amount, rounded to currency precision
func (m Money) Percentage(rate decimal.Decimal) Money {
	return Money{amount: RoundCurrency(m.amount.Mul(rate).Div(hundred)), currency: m.currency}
}

// Installments splits the amount into count parts truncated to cents. The
// rounding remainder is assigned to the last part so the parts sum exactly
// to the original amount: 100.00 / 3 -> 33.33, 33.33, 33.34.
func (m Money) Installments(count int) ([]Money, error) {
	if count <= 0 {
		return nil, errors.New("installment count must be positive")
	}
	total := RoundCurrency(m.amount)
	base := total.Div(decimal.NewFromInt(int64(count))).Truncate(CurrencyPlaces)

	parts := make([]Money, count)
	allocated := decimal.Zero
	for i := 0; i < count-1; i++ {
		parts[i] = Money{amount: base, currency: m.currency}
		allocated = allocated.Add(base)
	}
	parts[count-1] = Money{amount: total.Sub(allocated), currency: m.currency}
	return parts, nil
}

// String returns the amount with currency precision and code
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(CurrencyPlaces), m.currency)
}

// MarshalJSON encodes money as {"amount":"12.34","currency":"ARS"}
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.StringFixed(CurrencyPlaces),
		Currency: m.currency,
	})
}

// UnmarshalJSON decodes the format produced by MarshalJSON
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	if raw.Currency == "" {
		raw.Currency = DefaultCurrency
	}
	m.amount = d
	m.currency = raw.Currency
	return nil
}

// Value implements driver.Valuer; only the amount is stored
func (m Money) Value() (driver.Value, error) {
	return m.amount.StringFixed(CurrencyPlaces), nil
}

// Scan implements sql.Scanner
func (m *Money) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	m.amount = d
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

// VATLine is a priced line with VAT computed from a net amount
type VATLine struct {
	Net   decimal.Decimal `json:"net"`
	Rate  decimal.Decimal `json:"rate"`
	VAT   decimal.Decimal `json:"vat"`
	Total decimal.Decimal `json:"total"`
}

// ComputeVATLine derives net, VAT and total from an unrounded net amount and a
// percentage rate. Each figure is rounded independently from the unrounded
// values rather than derived by subtraction.
func ComputeVATLine(net, ratePercent decimal.Decimal) VATLine {
	vat := net.Mul(ratePercent).Div(hundred)
	return VATLine{
		Net:   RoundCurrency(net),
		Rate:  ratePercent,
		VAT:   RoundCurrency(vat),
		Total: RoundCurrency(net.Add(vat)),
	}
}

// SumDecimals adds a list of amounts
func SumDecimals(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// OneCent is the smallest currency unit
func OneCent() decimal.Decimal {
	return oneCent
}
