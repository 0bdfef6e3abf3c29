// Package format renders prices and sizes into the short display labels
// used by filter controls and recommendation texts.
package format

import (
	"fmt"
	"math"
)

const currencySymbol = "₪"

// Mark is one labeled point on a range control.
type Mark struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Currency formats a currency amount, using K/M short forms for large
// values. decimals applies to the short forms only.
func Currency(value float64, decimals int) string {
	return currencySymbol + Number(value, decimals)
}

// Number formats a number with K/M short forms for large values.
func Number(value float64, decimals int) string {
	abs := math.Abs(value)

	switch {
	case abs >= 1_000_000:
		return shortForm(value/1_000_000, decimals) + "M"
	case abs >= 1_000:
		return shortForm(value/1_000, decimals) + "K"
	default:
		return fmt.Sprintf("%.0f", value)
	}
}

func shortForm(scaled float64, decimals int) string {
	if decimals == 0 && scaled == math.Trunc(scaled) {
		return fmt.Sprintf("%d", int64(scaled))
	}
	return fmt.Sprintf("%.*f", decimals, scaled)
}

// PriceMarks builds up to count evenly spaced currency-labeled marks
// between min and max. The last mark is always the exact max.
func PriceMarks(min, max float64, count int) []Mark {
	return buildMarks(min, max, count, func(v float64) string {
		return Currency(v, 1)
	})
}

// NumberMarks builds up to count evenly spaced suffixed marks between
// min and max.
func NumberMarks(min, max float64, count int, suffix string) []Mark {
	return buildMarks(min, max, count, func(v float64) string {
		return Number(v, 0) + suffix
	})
}

func buildMarks(min, max float64, count int, label func(float64) string) []Mark {
	if max <= min || count < 2 {
		return []Mark{{Value: min, Label: label(min)}}
	}

	step := (max - min) / float64(count-1)

	marks := make([]Mark, 0, count)
	for i := 0; i < count; i++ {
		value := min + float64(i)*step
		if i == count-1 {
			value = max
		}
		marks = append(marks, Mark{Value: value, Label: label(value)})
	}

	return marks
}
