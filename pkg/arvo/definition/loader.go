package definition

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromFile loads a contract definition from a file, auto-detecting format by
// extension. Supported extensions: .yaml, .yml, .json
func FromFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return nil, fmt.Errorf("unsupported definition file extension: %s", ext)
	}
}

// FromYAML parses YAML data into a Definition.
func FromYAML(data []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &d, nil
}

// FromJSON parses JSON data into a Definition.
func FromJSON(data []byte) (*Definition, error) {
	var d Definition
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return &d, nil
}

// OrchestratorFromFile loads an orchestrator contract definition from a file,
// auto-detecting format by extension. Supported extensions: .yaml, .yml, .json
func OrchestratorFromFile(path string) (*OrchestratorDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return OrchestratorFromYAML(data)
	case ".json":
		return OrchestratorFromJSON(data)
	default:
		return nil, fmt.Errorf("unsupported definition file extension: %s", ext)
	}
}

// OrchestratorFromYAML parses YAML data into an OrchestratorDefinition.
func OrchestratorFromYAML(data []byte) (*OrchestratorDefinition, error) {
	var d OrchestratorDefinition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &d, nil
}

// OrchestratorFromJSON parses JSON data into an OrchestratorDefinition.
func OrchestratorFromJSON(data []byte) (*OrchestratorDefinition, error) {
	var d OrchestratorDefinition
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return &d, nil
}
