package gateway

import (
	"bytes"
	"encoding/json"
)

// unwrapList normalizes the list shapes the backend has been observed to
// return: a bare array passes through, {"data": [...]} is unwrapped, and
// null, absent or non-array bodies become nil. Callers treat nil as an empty
// result, never as an error.
func unwrapList(raw json.RawMessage) json.RawMessage {
	body := bytes.TrimSpace(raw)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil
	}
	if body[0] == '[' {
		return body
	}
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		inner := bytes.TrimSpace(wrapped.Data)
		if len(inner) > 0 && inner[0] == '[' {
			return inner
		}
	}
	return nil
}
