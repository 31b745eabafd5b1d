package types

// Model represents a GGUF model file discovered on disk.
type Model struct {
	// Stable identifier for the model (the file name).
	ID string `json:"id"`
	// Human-friendly name (file name without extension).
	Name string `json:"name"`
	// Absolute path to the model file on disk.
	Path string `json:"path"`
}
