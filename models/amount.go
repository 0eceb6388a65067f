package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Amount is a fee value that is numeric when it could be normalized and the
// original text otherwise.
type Amount struct {
	value   float64
	text    string
	numeric bool
}

// NumericAmount wraps a parsed value.
func NumericAmount(v float64) Amount {
	return Amount{value: v, numeric: true}
}

// TextAmount wraps text that is not a number.
func TextAmount(s string) Amount {
	return Amount{text: s}
}

// IsZero reports whether the amount carries nothing.
func (a Amount) IsZero() bool {
	return !a.numeric && a.text == ""
}

// Float returns the numeric value and whether the amount is numeric.
func (a Amount) Float() (float64, bool) {
	return a.value, a.numeric
}

// Text returns the preserved text of a non-numeric amount.
func (a Amount) Text() string {
	return a.text
}

// Value returns a float64 for numeric amounts, the text otherwise.
func (a Amount) Value() any {
	if a.numeric {
		return a.value
	}
	return a.text
}

func (a Amount) String() string {
	if a.numeric {
		return strconv.FormatFloat(a.value, 'f', -1, 64)
	}
	return a.text
}

// MarshalJSON writes numbers as JSON numbers and text as strings.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.numeric {
		return json.Marshal(a.value)
	}
	return json.Marshal(a.text)
}

// UnmarshalJSON accepts a JSON number, a string or null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode amount: %w", err)
		}
		*a = TextAmount(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode amount: %w", err)
	}
	*a = NumericAmount(v)
	return nil
}
