package infrastructure

import (
	"encoding/json"
	"io"
	"strings"

	"mesaYaBooking/internal/shared/normalization"
)

const maxErrorBody = 64 << 10

// decodeErrorMessages extracts user-facing messages from a failure body. The backend
// answers either {"detail": "text"} or {"detail": [{"msg": "text"}, ...]}; bare
// {"message": ...} or {"error": ...} bodies are accepted as well.
func decodeErrorMessages(body io.Reader) []string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	container, ok := payload.(map[string]any)
	if !ok {
		return messagesFrom(payload)
	}
	for _, key := range []string{"detail", "message", "error", "errors"} {
		if value, present := container[key]; present {
			if messages := messagesFrom(value); len(messages) > 0 {
				return messages
			}
		}
	}
	return nil
}

func messagesFrom(value any) []string {
	switch typed := value.(type) {
	case string:
		if trimmed := strings.TrimSpace(typed); trimmed != "" {
			return []string{trimmed}
		}
	case map[string]any:
		for _, key := range []string{"msg", "message", "detail"} {
			if text := normalization.AsString(typed[key]); text != "" {
				return []string{text}
			}
		}
	case []any:
		messages := make([]string, 0, len(typed))
		for _, item := range typed {
			messages = append(messages, messagesFrom(item)...)
		}
		return messages
	}
	return nil
}
