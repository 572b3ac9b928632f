// Package hostconfig reads the host bridge's config.json.
package hostconfig

import (
	"encoding/json"
	"os"

	"github.com/glorpus-work/hbpm/pkg/errors"
)

// Document is the subset of the host configuration the plugin manager reads.
type Document struct {
	DisabledPlugins []string          `json:"disabledPlugins,omitempty"`
	Platforms       []json.RawMessage `json:"platforms,omitempty"`
	Accessories     []json.RawMessage `json:"accessories,omitempty"`
}

// Read parses the host configuration at path. A missing file yields an empty document.
func Read(path string) (*Document, error) {
	if path == "" {
		return &Document{}, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Document{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read host config %s", path)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(errors.ErrValidation, "host config %s: %v", path, err)
	}
	return &doc, nil
}

// Disabled returns the set of disabled plugin names.
func (d *Document) Disabled() map[string]bool {
	out := make(map[string]bool, len(d.DisabledPlugins))
	for _, name := range d.DisabledPlugins {
		out[name] = true
	}
	return out
}

// IsDisabled reports whether name is listed in disabledPlugins.
func (d *Document) IsDisabled(name string) bool {
	for _, n := range d.DisabledPlugins {
		if n == name {
			return true
		}
	}
	return false
}

// ConfiguredBlocks counts platform and accessory blocks registered under alias.
func (d *Document) ConfiguredBlocks(alias string) int {
	if alias == "" {
		return 0
	}
	n := 0
	count := func(blocks []json.RawMessage, key string) {
		for _, raw := range blocks {
			var block map[string]json.RawMessage
			if json.Unmarshal(raw, &block) != nil {
				continue
			}
			var name string
			if json.Unmarshal(block[key], &name) == nil && name == alias {
				n++
			}
		}
	}
	count(d.Platforms, "platform")
	count(d.Accessories, "accessory")
	return n
}
