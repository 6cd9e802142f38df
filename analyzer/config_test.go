package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.json"))

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, "dental_classifier.onnx", cfg.Engine.ModelPath)
	assert.Equal(t, "DentAI Pro - Dental X-Ray Analysis Report", cfg.ReportTitle)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	in := Config{
		Engine: EngineConfig{
			OrtLib:         "/opt/ort/libonnxruntime.so",
			ModelPath:      "model.onnx",
			IntraOpThreads: 2,
		},
		TopK:        5,
		ReportTitle: "Clinic Report",
	}

	require.NoError(t, SaveConfig(path, in))
	out, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestApplyDefaults_ClampsTopK(t *testing.T) {
	cfg := Config{TopK: 50}
	cfg.ApplyDefaults()
	assert.Equal(t, NumClasses, cfg.TopK)

	cfg = Config{TopK: -1}
	cfg.ApplyDefaults()
	assert.Equal(t, 3, cfg.TopK)
}

func TestFromEnv_Overlay(t *testing.T) {
	t.Setenv(EnvOrtLib, "/env/libonnxruntime.so")
	t.Setenv(EnvModelPath, "/env/model.onnx")
	t.Setenv(EnvTopK, "5")

	cfg := FromEnv(Config{TopK: 3, Engine: EngineConfig{ModelPath: "file.onnx"}})

	assert.Equal(t, "/env/libonnxruntime.so", cfg.Engine.OrtLib)
	assert.Equal(t, "/env/model.onnx", cfg.Engine.ModelPath)
	assert.Equal(t, 5, cfg.TopK)
}

func TestFromEnv_InvalidTopKIgnored(t *testing.T) {
	t.Setenv(EnvTopK, "not-a-number")

	cfg := FromEnv(Config{TopK: 4})
	assert.Equal(t, 4, cfg.TopK)

	t.Setenv(EnvTopK, "-2")
	cfg = FromEnv(Config{TopK: 4})
	assert.Equal(t, 4, cfg.TopK)
}

func TestConfigClone_Independent(t *testing.T) {
	orig := Config{TopK: 3, Engine: EngineConfig{ModelPath: "a.onnx"}}
	clone := orig.Clone()
	clone.Engine.ModelPath = "b.onnx"

	assert.Equal(t, "a.onnx", orig.Engine.ModelPath)
}
