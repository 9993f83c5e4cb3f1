package ingest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// previewJSON decodes JSON content and describes its shape: top-level keys
// for objects, length plus first item for arrays, the value otherwise.
func previewJSON(content []byte, limit int) (string, any) {
	var data any
	if err := json.Unmarshal(content, &data); err != nil {
		return fmt.Sprintf("[JSON parse error: %v]", err), nil
	}

	var preview string
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		shown := keys
		if len(shown) > 10 {
			shown = shown[:10]
		}
		preview = "JSON object with keys: " + strings.Join(shown, ", ")
		if len(keys) > 10 {
			preview += fmt.Sprintf(" ... (%d more keys)", len(keys)-10)
		}
	case []any:
		preview = fmt.Sprintf("JSON array with %d items", len(v))
		if len(v) > 0 {
			first, err := json.MarshalIndent(v[0], "", "  ")
			if err == nil {
				preview += "\nFirst item: " + truncate(string(first), 500)
			}
		}
	default:
		preview = "JSON value: " + truncate(fmt.Sprint(v), 500)
	}

	return truncate(preview, limit), data
}
