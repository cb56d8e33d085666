package insights

import (
	"fmt"
	"math"
)

// FormatPower renders a watt value at a human scale.
func FormatPower(watts float64) string {
	switch {
	case math.Abs(watts) >= 1e6:
		return fmt.Sprintf("%.2f MW", watts/1e6)
	case math.Abs(watts) >= 1e3:
		return fmt.Sprintf("%.2f kW", watts/1e3)
	default:
		return fmt.Sprintf("%.0f W", watts)
	}
}

// FormatEnergy renders a watt-hour value at a human scale.
func FormatEnergy(wh float64) string {
	switch {
	case math.Abs(wh) >= 1e6:
		return fmt.Sprintf("%.2f MWh", wh/1e6)
	case math.Abs(wh) >= 1e3:
		return fmt.Sprintf("%.1f kWh", wh/1e3)
	default:
		return fmt.Sprintf("%.0f Wh", wh)
	}
}
