package engine

// dependencyUnavailableError signals a missing external dependency (e.g.,
// llama.cpp not compiled in, no API key) so callers can report the model as
// unavailable instead of failing generically.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	_, ok := err.(dependencyUnavailableError)
	return ok
}

// unknownEngineError is returned by FromConfig for an unsupported engine name.
type unknownEngineError struct{ name string }

func (e unknownEngineError) Error() string { return "unknown engine: " + e.name }

// IsUnknownEngine reports whether err came from an unsupported engine name.
func IsUnknownEngine(err error) bool {
	_, ok := err.(unknownEngineError)
	return ok
}
