package dto

import (
	"bytes"
	"encoding/json"
)

// NumberText keeps a numeric input as written. It accepts a JSON number or
// a JSON string so malformed amounts reach domain validation instead of
// failing the body decode.
type NumberText string

// UnmarshalJSON implements json.Unmarshaler.
func (n *NumberText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberText(s)
		return nil
	}
	*n = NumberText(data)
	return nil
}

func (n NumberText) String() string {
	return string(n)
}
