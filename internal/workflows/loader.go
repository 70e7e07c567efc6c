package workflows

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadDefinitionFile reads a definition input from a YAML (or JSON, which is
// a YAML subset) file, for the CLI import path. The returned input is parsed
// but not yet validated.
func LoadDefinitionFile(path string) (*DefinitionInput, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}

	var input DefinitionInput
	if err := yaml.Unmarshal(contents, &input); err != nil {
		return nil, fmt.Errorf("failed to parse definition file %s: %w", path, err)
	}

	return &input, nil
}
