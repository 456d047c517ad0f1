package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/bnema/panetree/internal/domain/entity"
)

const schemaBaseURL = "https://github.com/bnema/panetree/"

// Schema returns the JSON schema of the configuration file.
func Schema() *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	schema := r.Reflect(&Config{})
	schema.ID = schemaBaseURL + "config.schema.json"
	schema.Title = "panetree configuration"
	schema.Description = "Configuration schema for panetree"
	return schema
}

// SnapshotSchema returns the JSON schema of a saved layout, whose root is a
// recursive pane snapshot.
func SnapshotSchema() *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	schema := r.Reflect(&entity.Layout{})
	schema.ID = schemaBaseURL + "layout.schema.json"
	schema.Title = "panetree layout"
	schema.Description = "A named pane tree: panes split horizontally or vertically, leaves hold windows"
	return schema
}

// MarshalSchema renders a schema as indented JSON.
func MarshalSchema(schema *jsonschema.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// GenerateSchemaFile writes config.schema.json next to the config file.
func GenerateSchemaFile(configDir string) (string, error) {
	data, err := MarshalSchema(Schema())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(configDir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	schemaFile := filepath.Join(configDir, "config.schema.json")
	if err := os.WriteFile(schemaFile, data, filePerm); err != nil {
		return "", fmt.Errorf("failed to write schema file: %w", err)
	}
	return schemaFile, nil
}
