package analyzer

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrImageDecode  = errors.New("analyzer: image decode failed")
	ErrEngineClosed = errors.New("analyzer: engine is closed")
)

// ModelLoadError reports that the classifier model could not be loaded. It is
// fatal: the application cannot proceed without a working engine.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load model %q: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// NewModelLoadError creates a new model load error.
func NewModelLoadError(path string, err error) *ModelLoadError {
	return &ModelLoadError{Path: path, Err: err}
}

// InferenceError reports a per-image analysis failure. It is non-fatal: the
// image's Case becomes a failed marker and the batch continues. Decode
// failures additionally match ErrImageDecode via errors.Is.
type InferenceError struct {
	Path string
	Err  error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("analyze %q: %v", e.Path, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// NewInferenceError creates a new inference error.
func NewInferenceError(path string, err error) *InferenceError {
	return &InferenceError{Path: path, Err: err}
}
