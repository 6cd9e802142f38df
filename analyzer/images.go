package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// supportedExtensions lists the raster formats the engine can decode.
var supportedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// IsSupportedImage reports whether the path carries a supported image
// extension. The check is case-insensitive.
func IsSupportedImage(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SupportedExtensions returns the accepted extensions, sorted, with leading
// dots (the form file dialogs expect).
func SupportedExtensions() []string {
	out := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// CollectImages expands the given paths into a deduplicated list of image
// files, preserving argument order. Directories contribute their supported
// files in name order (one level, no recursion); explicit files must carry a
// supported extension.
func CollectImages(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			if !IsSupportedImage(path) {
				return nil, fmt.Errorf("unsupported image type: %s", path)
			}
			add(path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", path, err)
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() || !IsSupportedImage(entry.Name()) {
				continue
			}
			names = append(names, entry.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			add(filepath.Join(path, name))
		}
	}
	return out, nil
}
