package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Money is a monetary amount that peers send either as a JSON number or
// as a locale-formatted decimal string ("28,500"). Unparsable or
// non-finite values are discarded rather than propagated: the value
// stays unset and merges keep the previous amount.
type Money struct {
	Value float64
	Set   bool
}

// Amount wraps a plain float as a set Money.
func Amount(v float64) Money { return Money{Value: v, Set: true} }

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	if s[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil
		}
		// first comma is a locale decimal separator
		raw = strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			return nil
		}
		*m = Money{Value: v, Set: true}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	*m = Money{Value: v, Set: true}
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	if !m.Set {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}
