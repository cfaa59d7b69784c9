package ledger

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// yenSign prefixes every formatted amount.
const yenSign = "¥"

// Bounds on a parsed field. Larger inputs are treated as malformed.
const (
	MaxAmountIntegerDigits  = 30
	MaxAmountFractionDigits = 20
)

// groupSeparator is the Japanese thousands separator, taken from the
// locale data rather than hard-coded.
var groupSeparator = func() string {
	s := message.NewPrinter(language.Japanese).Sprint(number.Decimal(1000))
	_, size := utf8.DecodeRuneInString(s)
	return strings.TrimRight(s[size:], "0")
}()

// ParseAmount converts a quantity or price field to a number.
// Empty, malformed or out-of-range input yields zero; it is never an error.
func ParseAmount(value string) decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	exp := int64(d.Exponent())
	if exp < -MaxAmountFractionDigits || int64(d.NumDigits())+exp > MaxAmountIntegerDigits {
		return decimal.Zero
	}
	return d
}

// FormatYen renders an amount as yen with grouped thousands, e.g. ¥1,234.5.
// The fraction is printed as the value carries it; nothing is rounded.
func FormatYen(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	whole, frac, _ := strings.Cut(d.String(), ".")
	if frac != "" {
		frac = "." + frac
	}
	return yenSign + sign + groupDigits(whole) + frac
}

// groupDigits inserts groupSeparator every three digits from the right.
func groupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteString(groupSeparator)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
