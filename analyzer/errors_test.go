package analyzer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelLoadError(t *testing.T) {
	cause := errors.New("file truncated")
	err := NewModelLoadError("model.onnx", cause)

	assert.Contains(t, err.Error(), "model.onnx")
	assert.Contains(t, err.Error(), "file truncated")
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("startup: %w", err)
	var mlErr *ModelLoadError
	require.ErrorAs(t, wrapped, &mlErr)
	assert.Equal(t, "model.onnx", mlErr.Path)
}

func TestInferenceError_DecodeSubtype(t *testing.T) {
	err := NewInferenceError("scan.png", fmt.Errorf("%w: bad header", ErrImageDecode))

	assert.ErrorIs(t, err, ErrImageDecode)
	var infErr *InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, "scan.png", infErr.Path)
	assert.Contains(t, err.Error(), "scan.png")

	runtimeErr := NewInferenceError("scan.png", errors.New("session failed"))
	assert.NotErrorIs(t, runtimeErr, ErrImageDecode)
}
