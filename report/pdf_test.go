package report

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentai/analyzer"
)

func writeTestPNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 80, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 3), G: uint8(y * 4), B: 90, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func successCase(imagePath string) analyzer.Case {
	return analyzer.NewCase(imagePath, analyzer.PredictionResult{
		{Label: "radicular cyst", Confidence: 0.87},
		{Label: "periapical granuloma", Confidence: 0.09},
		{Label: "Nil control", Confidence: 0.02},
	})
}

func TestWrite_EmptyBatch(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "report.pdf")
	gen := NewGenerator("")

	err := gen.Write(dest, nil)

	require.ErrorIs(t, err, ErrEmptyBatch)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "no file is written for an empty batch")
}

func TestWrite_AllFailedCasesCountAsEmpty(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "report.pdf")
	cases := []analyzer.Case{
		analyzer.NewCase("a.png", analyzer.ErrorResult()),
		analyzer.NewCase("b.png", analyzer.ErrorResult()),
	}

	err := NewGenerator("").Write(dest, cases)

	require.ErrorIs(t, err, ErrEmptyBatch)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWrite_ProducesPDF(t *testing.T) {
	dir := t.TempDir()
	img := writeTestPNG(t, dir, "scan.png")
	dest := filepath.Join(dir, "report.pdf")

	err := NewGenerator("Clinic Report").Write(dest, []analyzer.Case{successCase(img)})

	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestWrite_MissingImageGetsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	img := writeTestPNG(t, dir, "scan.png")
	dest := filepath.Join(dir, "report.pdf")
	cases := []analyzer.Case{
		successCase(filepath.Join(dir, "missing.png")),
		successCase(img),
	}

	err := NewGenerator("").Write(dest, cases)

	require.NoError(t, err, "one unreadable image must not abort the export")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestWrite_FailedCasesExcluded(t *testing.T) {
	dir := t.TempDir()
	img := writeTestPNG(t, dir, "scan.png")
	dest := filepath.Join(dir, "report.pdf")
	cases := []analyzer.Case{
		analyzer.NewCase("corrupt.png", analyzer.ErrorResult()),
		successCase(img),
	}

	err := NewGenerator("").Write(dest, cases)

	require.NoError(t, err)
	_, statErr := os.Stat(dest)
	assert.NoError(t, statErr)
}

func TestWrite_DestinationFailure(t *testing.T) {
	dir := t.TempDir()
	img := writeTestPNG(t, dir, "scan.png")
	dest := filepath.Join(dir, "no", "such", "dir", "report.pdf")

	err := NewGenerator("").Write(dest, []analyzer.Case{successCase(img)})

	require.Error(t, err)
	var expErr *ExportError
	require.ErrorAs(t, err, &expErr)
	assert.Equal(t, dest, expErr.Path)
}

func TestNewGenerator_DefaultTitle(t *testing.T) {
	assert.Equal(t, "DentAI Pro - Dental X-Ray Analysis Report", NewGenerator("").Title)
	assert.Equal(t, "Custom", NewGenerator("Custom").Title)
}
