// Package export writes run results for external consumers.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/brandguard/internal/model"
	"gopkg.in/yaml.v3"
)

// Supported formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ResolveFormat picks the output format: an explicit format wins,
// otherwise the file extension decides and JSON is the default
func ResolveFormat(path, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case "":
	default:
		return "", fmt.Errorf("unsupported format %q (use json or yaml)", format)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return FormatJSON, nil
	}
}

// Marshal encodes v as indented JSON or YAML
func Marshal(v interface{}, format string) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal YAML: %w", err)
		}
		return data, nil
	case FormatJSON, "":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal JSON: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (use json or yaml)", format)
	}
}

// WriteBundle writes the export bundle to path, creating parent directories
func WriteBundle(path, format string, bundle *model.ExportBundle) error {
	if bundle == nil {
		return fmt.Errorf("no bundle to write")
	}
	return WriteFile(path, format, bundle)
}

// WriteFile writes any value in the resolved format
func WriteFile(path, format string, v interface{}) error {
	resolved, err := ResolveFormat(path, format)
	if err != nil {
		return err
	}
	data, err := Marshal(v, resolved)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadBundle loads a bundle written by WriteBundle
func ReadBundle(path string) (*model.ExportBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	format, err := ResolveFormat(path, "")
	if err != nil {
		return nil, err
	}

	var b model.ExportBundle
	if format == FormatYAML {
		err = yaml.Unmarshal(data, &b)
	} else {
		err = json.Unmarshal(data, &b)
	}
	if err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return &b, nil
}
