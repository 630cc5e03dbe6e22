package socket

import "encoding/json"

// Frame is a client message.
type Frame struct {
	ID    string          `json:"id,omitempty"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Reply answers one Frame. Exactly one of Data and Error is set.
type Reply struct {
	ID    string      `json:"id,omitempty"`
	Event string      `json:"event"`
	Data  any         `json:"data,omitempty"`
	Error *ReplyError `json:"error,omitempty"`
}

type ReplyError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
