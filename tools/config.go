package tools

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// ApplyConfigFile sets the flags of flagCommand from a YAML or JSON job
// document. source is either a file path or an inline JSON object.
// Keys use the flag names with '_' or '-' as separators. Flags already
// set on the command line keep their value. Lists are joined with ','.
func ApplyConfigFile(flagCommand *flag.FlagSet, source string) error {
	if source == "" {
		return nil
	}

	data, err := readConfigSource(source)
	if err != nil {
		return err
	}

	var values map[string]interface{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse config %s: %w", source, err)
	}

	// long and shorthand flags share the same Value
	explicit := make(map[flag.Value]bool)
	flagCommand.Visit(func(f *flag.Flag) {
		explicit[f.Value] = true
	})

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		name := strings.ReplaceAll(key, "_", "-")
		f := flagCommand.Lookup(name)
		if f == nil {
			return fmt.Errorf("config %s: unknown key %q", source, key)
		}
		if name == "config" || explicit[f.Value] {
			continue
		}
		value, err := configValue(values[key])
		if err != nil {
			return fmt.Errorf("config %s: key %q: %w", source, key, err)
		}
		if err := flagCommand.Set(name, value); err != nil {
			return fmt.Errorf("config %s: key %q: %w", source, key, err)
		}
	}

	return nil
}

func readConfigSource(source string) ([]byte, error) {
	if strings.HasPrefix(strings.TrimSpace(source), "{") {
		return []byte(source), nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return data, nil
}

func configValue(v interface{}) (string, error) {
	switch value := v.(type) {
	case nil:
		return "", nil
	case []interface{}:
		parts := make([]string, len(value))
		for i, item := range value {
			s, err := configValue(item)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ","), nil
	case map[string]interface{}:
		return "", fmt.Errorf("nested objects are not supported")
	default:
		return fmt.Sprint(value), nil
	}
}
