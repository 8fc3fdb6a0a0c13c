package billaudit

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Optional dollar sign, digit groups with optional thousands separators,
// optional one- or two-digit decimal part.
var moneyPattern = regexp.MustCompile(`\$?\d+(?:,\d{3})*(?:\.\d{1,2})?`)

// ExtractMoney pulls the first currency magnitude out of an arbitrary text
// fragment. Missing or unparseable values resolve to 0.0, never an error:
// downstream logic always has a usable number and treats $0 as "not
// present."
func ExtractMoney(fragment string) float64 {
	match := moneyPattern.FindString(fragment)
	if match == "" {
		return 0.0
	}
	match = strings.TrimPrefix(match, "$")
	match = strings.ReplaceAll(match, ",", "")
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || v < 0 {
		return 0.0
	}
	return v
}

var currencyPrinter = message.NewPrinter(language.English)

// FormatCurrency renders an amount as whole dollars with thousands
// grouping, e.g. $4,000.
func FormatCurrency(amount float64) string {
	return currencyPrinter.Sprintf("$%.0f", amount)
}
