// Package fileio bundles the small file and dictionary helpers shared by the
// rest of the toolkit: JSON/YAML save/load, folder creation, and map
// utilities for deriving run-directory names from configurations.
package fileio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CreateFolder creates a folder (and parents) if it does not exist.
func CreateFolder(path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("fileio: create folder %s: %w", path, err)
	}
	return nil
}

// SaveJSON writes v to path as indented JSON.
func SaveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("fileio: marshal json: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o640); err != nil {
		return fmt.Errorf("fileio: write %s: %w", path, err)
	}
	return nil
}

// LoadJSON reads JSON from path into out.
func LoadJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("fileio: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("fileio: parse %s: %w", path, err)
	}
	return nil
}

// SaveYAML writes v to path as YAML.
func SaveYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("fileio: marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("fileio: write %s: %w", path, err)
	}
	return nil
}

// LoadYAML reads YAML from path into out.
func LoadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("fileio: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("fileio: parse %s: %w", path, err)
	}
	return nil
}

// ResolvePath cleans path and optionally requires it to exist.
func ResolvePath(path string, mustExist bool) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("fileio: resolve %s: %w", path, err)
	}
	if mustExist {
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("fileio: path does not exist: %s: %w", abs, err)
		}
	}
	return abs, nil
}
