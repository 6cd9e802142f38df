package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupportedImage(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"scan.png", true},
		{"scan.PNG", true},
		{"scan.jpg", true},
		{"scan.JPEG", true},
		{"scan.bmp", false},
		{"scan.onnx", false},
		{"scan", false},
		{"dir/scan.jpeg", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSupportedImage(tt.path), "IsSupportedImage(%q)", tt.path)
	}
}

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".jpeg", ".jpg", ".png"}, SupportedExtensions())
}

func TestCollectImages_DirectoryExpansion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.jpg", "notes.txt", "c.JPEG"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	got, err := CollectImages([]string{dir})

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.JPEG"),
	}, got)
}

func TestCollectImages_ExplicitFilesAndDedup(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "scan.png")
	require.NoError(t, os.WriteFile(img, []byte("x"), 0o644))

	got, err := CollectImages([]string{img, dir, img})

	require.NoError(t, err)
	assert.Equal(t, []string{img}, got)
}

func TestCollectImages_Failures(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))

	_, err := CollectImages([]string{txt})
	assert.Error(t, err, "unsupported extension on an explicit file")

	_, err = CollectImages([]string{filepath.Join(dir, "missing.png")})
	assert.Error(t, err, "nonexistent path")
}
