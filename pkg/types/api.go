package types

// RespondRequest is the body of POST /v1/respond and POST /v1/stream.
type RespondRequest struct {
	// Required prompt text.
	Prompt string `json:"prompt"`
}

// StreamLine is one NDJSON line of a respond/stream response. Exactly one
// field is set: chunks first, then at most one of done/error/cancelled.
type StreamLine struct {
	Chunk     string `json:"chunk,omitempty"`
	Done      bool   `json:"done,omitempty"`
	Error     string `json:"error,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	Error string `json:"error"`
	// HTTP status code.
	Code int `json:"code"`
}

// ModeStatus describes one call mode of the bridge.
type ModeStatus struct {
	Mode string `json:"mode"`
	// ID of the running operation, empty when idle.
	Operation string `json:"operation,omitempty"`
	// Operations started in this mode since startup.
	Started uint64 `json:"started"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Engine    string `json:"engine"`
	Available bool   `json:"available"`
	// Reason the engine is unavailable, if any.
	Reason         string       `json:"reason,omitempty"`
	Modes          []ModeStatus `json:"modes"`
	UptimeSeconds  int64        `json:"uptime_seconds"`
	ServerTimeUnix int64        `json:"server_time_unix"`
}
