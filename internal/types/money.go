// README: Common money value object used across modules. Amounts are kept in kobo.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

const CurrencyNGN = "NGN"

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Naira builds an NGN amount from a whole-naira value.
func Naira(n int64) Money {
	return Money{Amount: n * 100, Currency: CurrencyNGN}
}

// Major returns the amount in major units, the form payment gateways expect.
func (m Money) Major() float64 {
	return float64(m.Amount) / 100
}

func (m Money) IsPositive() bool {
	return m.Amount > 0
}

// String renders the amount the way it is shown in chat, e.g. ₦12,500.50.
func (m Money) String() string {
	sign := ""
	amount := m.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	whole := groupThousands(strconv.FormatInt(amount/100, 10))
	kobo := amount % 100
	symbol := "₦"
	if m.Currency != "" && m.Currency != CurrencyNGN {
		symbol = m.Currency + " "
	}
	if kobo == 0 {
		return sign + symbol + whole
	}
	return fmt.Sprintf("%s%s%s.%02d", sign, symbol, whole, kobo)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
