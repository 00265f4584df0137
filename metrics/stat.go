package metrics

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Stat is a float64 that survives JSON when it holds a ±Inf sentinel.
// Infinities marshal as the strings "+Inf" and "-Inf"; NaN as null.
type Stat float64

func (s Stat) Float() float64 { return float64(s) }

func (s Stat) IsInf() bool { return math.IsInf(float64(s), 0) }

func (s Stat) String() string {
	switch {
	case math.IsInf(float64(s), 1):
		return "+Inf"
	case math.IsInf(float64(s), -1):
		return "-Inf"
	}
	return strconv.FormatFloat(float64(s), 'f', 4, 64)
}

func (s Stat) MarshalJSON() ([]byte, error) {
	f := float64(s)
	switch {
	case math.IsNaN(f):
		return []byte("null"), nil
	case math.IsInf(f, 0):
		return json.Marshal(s.String())
	}
	return json.Marshal(f)
}

func (s *Stat) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null":
		*s = Stat(math.NaN())
		return nil
	case `"+Inf"`:
		*s = Stat(math.Inf(1))
		return nil
	case `"-Inf"`:
		*s = Stat(math.Inf(-1))
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	*s = Stat(f)
	return nil
}
