package tools

import (
	"encoding/json"
	"fmt"
)

// Error payload kinds shared by the tools.
const (
	KindPermissionDenied = "PermissionDenied"
	KindFileNotFound     = "FileNotFound"
	KindNoOperations     = "NoOperations"
	KindNotFound         = "NotFound"
	KindIOFailure        = "IOFailure"
	KindTimeout          = "Timeout"
)

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"ok":false,"error":"marshal result: %s"}`, err.Error())
	}
	return string(data)
}

// errorResult builds the structured failure payload returned as a tool-role
// message; tools never raise domain failures past the executor.
func errorResult(kind, format string, args ...any) string {
	return mustJSON(map[string]any{
		"ok":    false,
		"kind":  kind,
		"error": fmt.Sprintf(format, args...),
	})
}
