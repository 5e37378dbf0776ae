package parksmart

import (
	"math"
	"strconv"
)

// FormatAmount renders a charge for display. Unknown amounts render as a
// placeholder rather than zero.
func FormatAmount(n *float64) string {
	if n == nil || math.IsNaN(*n) {
		return "₹--"
	}
	return "₹" + strconv.FormatFloat(math.Round(*n), 'f', 0, 64)
}
