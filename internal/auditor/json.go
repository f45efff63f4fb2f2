package auditor

import (
	"encoding/json"
	"os"
)

// loadJSON reads path and decodes it into a generic instance for
// schema validation.
func loadJSON(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
