package openlibrary

import (
	"bytes"
	"encoding/json"
)

// TextValue is a field Open Library sends either as a bare string or as
// {"type": "/type/text", "value": "..."}.
type TextValue string

func (t *TextValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TextValue(s)
		return nil
	}

	var wrapped struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*t = TextValue(wrapped.Value)
	return nil
}

func (t TextValue) String() string {
	return string(t)
}
