// README: Common money value object used across modules.
package types

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const CurrencyTHB = "THB"

// Money amounts are whole currency units; rental prices carry no minor unit.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func THB(amount int64) Money {
	return Money{Amount: amount, Currency: CurrencyTHB}
}

var printer = message.NewPrinter(language.English)

// FormatTHB renders an amount the way the storefront shows prices, e.g. "4,176 บาท".
func FormatTHB(amount int64) string {
	return printer.Sprintf("%d บาท", amount)
}

func (m Money) String() string {
	if m.Currency == "" || m.Currency == CurrencyTHB {
		return FormatTHB(m.Amount)
	}
	return printer.Sprintf("%d %s", m.Amount, m.Currency)
}
