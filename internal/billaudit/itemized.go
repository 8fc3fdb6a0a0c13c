package billaudit

import (
	"regexp"
	"strings"
)

var bulletPrefix = regexp.MustCompile(`^[-*]\s*`)

// ParseItemizedRows converts ITEMIZED section lines into structured rows.
// Lines that do not split into at least three pipe-delimited parts fall back
// to a generic row carrying the cleaned line as its explanation, so output
// length always equals input length.
func ParseItemizedRows(lines []string) []ItemizedRow {
	rows := make([]ItemizedRow, 0, len(lines))
	for _, line := range lines {
		clean := bulletPrefix.ReplaceAllString(line, "")
		parts := strings.Split(clean, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 3 {
			rows = append(rows, ItemizedRow{
				Category:    parts[0],
				Amount:      parts[1],
				Explanation: parts[2],
			})
			continue
		}
		rows = append(rows, ItemizedRow{
			Category:    "Charge",
			Amount:      "See note",
			Explanation: clean,
		})
	}
	return rows
}
