package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the scale of every money column.
const MoneyPlaces = 2

// HasMoneyScale reports whether d fits MoneyPlaces without rounding. Trailing zeros are fine: 1.500 is 1.50.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyPlaces))
}
