package export

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSON renders a document as indented JSON. Records marshal with their
// fields in arrival order, so exports are byte-stable for identical input.
func JSON(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return buf.Bytes(), nil
}
