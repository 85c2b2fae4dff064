package v1

import (
	"encoding/json"
	"fmt"
	"math"
)

// Values is a list of results. JSON has no representation for infinities
// or NaN, those are encoded as the strings "Infinity", "-Infinity" and "NaN".
type Values []float64

func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	elems := make([]interface{}, len(v))
	for i, f := range v {
		switch {
		case math.IsNaN(f):
			elems[i] = "NaN"
		case math.IsInf(f, 1):
			elems[i] = "Infinity"
		case math.IsInf(f, -1):
			elems[i] = "-Infinity"
		default:
			elems[i] = f
		}
	}
	return json.Marshal(elems)
}

func (v *Values) UnmarshalJSON(data []byte) error {
	var elems []interface{}
	if err := json.Unmarshal(data, &elems); err != nil {
		return err
	}
	if elems == nil {
		*v = nil
		return nil
	}
	values := make(Values, len(elems))
	for i, elem := range elems {
		switch e := elem.(type) {
		case float64:
			values[i] = e
		case string:
			switch e {
			case "NaN":
				values[i] = math.NaN()
			case "Infinity":
				values[i] = math.Inf(1)
			case "-Infinity":
				values[i] = math.Inf(-1)
			default:
				return fmt.Errorf("invalid value %q", e)
			}
		default:
			return fmt.Errorf("invalid value %v", elem)
		}
	}
	*v = values
	return nil
}
