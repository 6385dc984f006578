package transport

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexibleNumber accepts a JSON number, a numeric string ("12,500.50"), null
// or anything else. Input that is not a finite number becomes zero instead of
// failing the request.
type FlexibleNumber struct {
	Value float64
	Set   bool
}

func (n FlexibleNumber) IsZero() bool {
	return !n.Set
}

func (n *FlexibleNumber) UnmarshalJSON(data []byte) error {
	n.Set = true
	n.Value = 0

	var number float64
	if err := json.Unmarshal(data, &number); err == nil {
		n.Value = finite(number)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
		if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
			n.Value = finite(parsed)
		}
	}
	return nil
}

func (n FlexibleNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Value)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
