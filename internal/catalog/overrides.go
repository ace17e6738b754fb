package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed overrides.yaml
var embeddedOverrides []byte

// ParseOverrides reads a YAML mapping of keyword to category id.
// An empty document yields an empty table.
func ParseOverrides(r io.Reader) (map[string]int, error) {
	overrides := make(map[string]int)
	if err := yaml.NewDecoder(r).Decode(&overrides); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode keyword overrides: %w", err)
	}
	return overrides, nil
}

// LoadOverridesFile reads keyword overrides from disk.
func LoadOverridesFile(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open overrides file: %w", err)
	}
	defer f.Close()

	overrides, err := ParseOverrides(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return overrides, nil
}

// DefaultOverrides returns the keyword overrides bundled with the binary.
func DefaultOverrides() map[string]int {
	overrides, err := ParseOverrides(bytes.NewReader(embeddedOverrides))
	if err != nil {
		panic(fmt.Sprintf("embedded overrides: %v", err))
	}
	return overrides
}
