package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/winmgr/internal/geometry"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload       CommandType = "RELOAD"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandListKeybinds CommandType = "LIST_KEYBINDS"
	CommandApplyLayout  CommandType = "APPLY_LAYOUT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ApplyLayoutPayload names a preset, or carries a custom rectangle when
// Preset is empty.
type ApplyLayoutPayload struct {
	Preset string         `json:"preset,omitempty"`
	Rect   *geometry.Rect `json:"rect,omitempty"`
}

// Layout converts the payload to a layout.
func (p ApplyLayoutPayload) Layout() (geometry.Layout, error) {
	switch {
	case p.Preset != "" && p.Rect != nil:
		return geometry.Layout{}, fmt.Errorf("preset and rect are mutually exclusive")
	case p.Preset != "":
		preset, ok := geometry.ParsePreset(p.Preset)
		if !ok {
			return geometry.Layout{}, fmt.Errorf("unknown layout %q", p.Preset)
		}
		return geometry.PresetLayout(preset), nil
	case p.Rect != nil:
		return geometry.CustomLayout(*p.Rect), nil
	}
	return geometry.Layout{}, fmt.Errorf("preset or rect is required")
}

// PayloadFor builds the APPLY_LAYOUT payload for layout.
func PayloadFor(layout geometry.Layout) ApplyLayoutPayload {
	if layout.IsCustom() {
		r := layout.Custom
		return ApplyLayoutPayload{Rect: &r}
	}
	return ApplyLayoutPayload{Preset: string(layout.Preset)}
}

// AppliedData is returned by APPLY_LAYOUT.
type AppliedData struct {
	Layout string        `json:"layout"`
	Rect   geometry.Rect `json:"rect"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
