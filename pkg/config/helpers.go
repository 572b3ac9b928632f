package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/hbpm/pkg/errors"
)

var durationType = reflect.TypeOf(time.Duration(0))

// settingsField returns the addressable Settings field tagged with key.
func (c *Config) settingsField(key string) (reflect.Value, bool) {
	v := reflect.ValueOf(&c.Settings).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if yamlKey(t.Field(i)) == key {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func yamlKey(f reflect.StructField) string {
	tag := f.Tag.Get("yaml")
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

// SetValue sets a setting by its YAML key and re-validates the configuration.
// Durations accept Go duration syntax ("90s", "24h").
func (c *Config) SetValue(key, value string) error {
	field, ok := c.settingsField(key)
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}

	switch {
	case field.Type() == durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		field.SetInt(int64(d))
	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		field.SetBool(b)
	case field.Kind() == reflect.String:
		field.SetString(value)
	default:
		return fmt.Errorf("%w: %s cannot be set from the command line", errors.ErrUnknownConfigKey, key)
	}

	return c.Validate()
}

// GetValue returns a setting by its YAML key formatted as a string.
func (c *Config) GetValue(key string) (string, error) {
	field, ok := c.settingsField(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
	return formatValue(field), nil
}

func formatValue(v reflect.Value) string {
	switch {
	case v.Type() == durationType:
		return time.Duration(v.Int()).String()
	case v.Kind() == reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case v.Kind() == reflect.String:
		return v.String()
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// ToMap returns every setting keyed by its YAML name. Useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)
	v := reflect.ValueOf(c.Settings)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		key := yamlKey(t.Field(i))
		if key == "" {
			continue
		}
		result[key] = formatValue(v.Field(i))
	}
	return result
}

// Keys returns the sorted list of setting keys.
func (c *Config) Keys() []string {
	m := c.ToMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
