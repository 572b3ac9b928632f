package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/glorpus-work/hbpm/pkg/errors"
)

//go:embed schema/config.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

// ConfigSchema holds the fields of config.schema.json the engine needs.
type ConfigSchema struct {
	PluginAlias string `json:"pluginAlias"`
	PluginType  string `json:"pluginType"`
	Singular    bool   `json:"singular"`
	CustomUI    bool   `json:"customUi"`
}

func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("config.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("config.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// ParseConfigSchema validates data against the plugin settings schema shape and decodes it.
func ParseConfigSchema(data []byte) (*ConfigSchema, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s: %v", errors.ErrValidation, SchemaFile, err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrValidation, SchemaFile, err)
	}

	var cs ConfigSchema
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("%w: invalid %s: %v", errors.ErrValidation, SchemaFile, err)
	}
	return &cs, nil
}

// HasConfigSchema reports whether dir contains config.schema.json.
func HasConfigSchema(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, SchemaFile))
	return err == nil
}

// ReadConfigSchema reads and validates dir/config.schema.json.
func ReadConfigSchema(dir string) (*ConfigSchema, error) {
	path := filepath.Join(dir, SchemaFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrNotFoundWithName("settings schema", path)
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return ParseConfigSchema(data)
}
