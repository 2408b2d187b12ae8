package utils

import (
	"fmt"
	"math"
)

// FloorAmount truncates an amount to the whole currency unit. Bills are
// floored once, at the total-payable stage; component costs keep their
// decimals.
func FloorAmount(amount float64) float64 {
	return math.Floor(amount)
}

// RoundHours rounds an hours figure to 4 decimals so repeated membership
// deductions do not drift.
func RoundHours(hours float64) float64 {
	return math.Round(hours*10000) / 10000
}

// FormatDuration renders seconds as HH:MM:SS for timers and receipts.
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
