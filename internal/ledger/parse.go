package ledger

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/habitbot/internal/apperr"
)

// amountPattern is plain positional notation. Exponents and explicit plus
// signs are rejected so an amount never expands beyond what was typed.
var amountPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// ParseExpense reads "<amount> <category>". The amount accepts a comma as
// decimal separator; the category is kept verbatim after trimming.
func ParseExpense(raw string) (Entry, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Entry{}, apperr.Parse(raw, "empty input")
	}

	cut := strings.IndexFunc(text, unicode.IsSpace)
	if cut < 0 {
		return Entry{}, apperr.Parse(raw, "category is missing")
	}
	amountToken := text[:cut]
	category := strings.TrimSpace(text[cut:])
	if category == "" {
		return Entry{}, apperr.Parse(raw, "category is missing")
	}

	amountToken = strings.ReplaceAll(amountToken, ",", ".")
	if !amountPattern.MatchString(amountToken) {
		return Entry{}, apperr.Parse(raw, "amount is not a number")
	}
	amount, err := decimal.NewFromString(amountToken)
	if err != nil {
		return Entry{}, apperr.Parse(raw, "amount is not a number")
	}
	if amount.IsNegative() {
		return Entry{}, apperr.Parse(raw, "amount is negative")
	}
	return Entry{Category: category, Amount: amount}, nil
}
