package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON dumps layout results as JSON for inspection.
func WriteDebugJSON(v any, path string) error {
	if v == nil {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
