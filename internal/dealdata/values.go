package dealdata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// number accepts JSON numbers and the strings legacy blobs carry:
// "$1,250.00", "5%", "", null.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	v, _, err := parseNumber(b)
	if err != nil {
		return err
	}
	*n = number(v)
	return nil
}

// parseNumber reads a lenient number; percent reports a "%" suffix
func parseNumber(b []byte) (v float64, percent bool, err error) {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return 0, false, nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return 0, false, err
		}
		percent = strings.Contains(str, "%")
		s = strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(str)
		if s == "" {
			return 0, false, nil
		}
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid number %s: %w", string(b), err)
	}
	return v, percent, nil
}

// rate is a fraction. "1%" is always 0.01; a bare number above 1 is read
// as a whole percentage (5 for 5%).
type rate float64

func (r *rate) UnmarshalJSON(b []byte) error {
	v, percent, err := parseNumber(b)
	if err != nil {
		return err
	}
	if percent || v > 1 {
		v /= 100
	}
	*r = rate(v)
	return nil
}

// flag accepts booleans, "yes"/"no", "true"/"false" and 0/1
type flag bool

func (f *flag) UnmarshalJSON(b []byte) error {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(string(b)), `"`))
	switch s {
	case "true", "yes", "y", "1", "on":
		*f = true
	case "false", "no", "n", "0", "off", "", "null":
		*f = false
	default:
		return fmt.Errorf("invalid flag %s", string(b))
	}
	return nil
}
