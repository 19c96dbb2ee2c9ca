package kafka

import (
	"encoding/json"
	"fmt"
)

// UnwrapPayload decodes an envelope's type-specific payload.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
