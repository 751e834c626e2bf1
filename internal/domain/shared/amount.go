package shared

import (
	"fmt"

	"github.com/erp/treasury/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CheckCurrencyAmount rejects amounts with more decimal places than money is
// stored with. field names the amount in the message, e.g. "Movement amount".
func CheckCurrencyAmount(field string, amount decimal.Decimal) error {
	if valueobject.HasCurrencyPrecision(amount) {
		return nil
	}
	return ErrInvalidAmount.WithMessage(fmt.Sprintf("%s %s has more than %d decimal places",
		field, amount.String(), valueobject.CurrencyPlaces))
}
