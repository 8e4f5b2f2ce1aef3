package api

import (
	"encoding/json"
	"fmt"
)

// Envelope is the backend's uniform response wrapper. Callers extract Data
// and must treat Success=false the same as a transport failure.
type Envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// Decode unwraps the envelope into out. A nil out discards the payload and
// only checks the success flag.
func (e Envelope) Decode(out any) error {
	if !e.Success {
		reason := e.Error
		if reason == "" {
			reason = e.Message
		}
		if reason == "" {
			reason = "request rejected"
		}
		return fmt.Errorf("backend: %s", reason)
	}
	if out == nil || len(e.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decode envelope data: %w", err)
	}
	return nil
}

// Page is the paged list envelope used by the history endpoint.
type Page[T any] struct {
	Content       []T  `json:"content"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Number        int  `json:"number"`
	Size          int  `json:"size"`
	Last          bool `json:"last"`
}
