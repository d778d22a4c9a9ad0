package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// SchemaVersion is the version of the embedded configuration schema.
const SchemaVersion = "1.0.0"

//go:embed schemas/mmdguard-config-v1.json
var schemaV1 []byte

// Schema returns the embedded JSON Schema for config files.
func Schema() []byte {
	out := make([]byte, len(schemaV1))
	copy(out, schemaV1)
	return out
}

// ValidateDocument validates a YAML (or JSON) config document against the
// embedded schema. An empty document is valid.
func ValidateDocument(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("config is not valid YAML: %v", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config cannot be represented as JSON: %v", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaV1),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %v", err)
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(problems, "\n"))
	}

	return nil
}
