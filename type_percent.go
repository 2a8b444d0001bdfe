package rentroll

import (
	"fmt"
	"math"
)

// Percent is a ratio expressed in percent (50 means one half).
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	return math.Abs(float64(p-q)) < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// MarshalJSON rounds to two decimals to keep reports stable.
func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%.2f", math.Round(float64(p)*100)/100)), nil
}

// ratio returns num/den in percent, 0 when den is 0.
func ratio(num, den int) Percent {
	if den == 0 {
		return 0
	}
	return Percent(float64(num) * 100 / float64(den))
}
