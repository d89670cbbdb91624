package models

import (
	"math"
	"regexp"
	"strconv"
)

var nonPriceChars = regexp.MustCompile(`[^\d.]`)

// FormatPrice renders a numeric amount as a display price like "₱9,677".
// Zero and absent amounts render as the empty string.
func FormatPrice(value float64) string {
	if value <= 0 {
		return ""
	}

	digits := strconv.FormatInt(int64(math.Round(value)), 10)

	var grouped []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, d)
	}

	return "₱" + string(grouped)
}

// ParsePrice converts a formatted price like "₱7,395" back to 7395. Empty or
// unparseable input yields 0.
func ParsePrice(price string) float64 {
	cleaned := nonPriceChars.ReplaceAllString(price, "")
	if cleaned == "" {
		return 0
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}

	return value
}
