// Package registry discovers GGUF model files for the llama engine.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fmbridge/internal/common/fsutil"
	"fmbridge/pkg/types"
)

// LoadDir scans a directory for *.gguf files and builds a registry from filenames.
// ID is the full filename (including extension); Path is the absolute file path.
func LoadDir(dir string) ([]types.Model, error) {
	abs, err := fsutil.Resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		models = append(models, types.Model{ID: name, Name: strings.TrimSuffix(name, filepath.Ext(name)), Path: filepath.Join(abs, name)})
	}
	return models, nil
}

// ResolveModel returns the on-disk path for model. With a models dir, model is
// a file name inside it (an empty model picks the first one found); otherwise
// model is treated as a path.
func ResolveModel(modelsDir, model string) (string, error) {
	if modelsDir == "" {
		if model == "" {
			return "", fmt.Errorf("no model configured")
		}
		return fsutil.Resolve(model)
	}
	models, err := LoadDir(modelsDir)
	if err != nil {
		return "", err
	}
	for _, m := range models {
		if model == "" || m.ID == model || m.Name == model {
			return m.Path, nil
		}
	}
	if model == "" {
		return "", fmt.Errorf("no *.gguf models in %s", modelsDir)
	}
	return "", fmt.Errorf("model not found: %s", model)
}
