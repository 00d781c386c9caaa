package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const exampleHeader = `# htmd configuration
#
# Place this file at ~/.htmd.toml or ./.htmd.toml, or pass --config.
# Every key can be overridden from the environment, for example
# HTMD_CONVERSION_LINE_LENGTH=100 or HTMD_SECURITY_SANITIZE_HTML=false.

`

// Example renders the default configuration as commented TOML.
func Example() ([]byte, error) {
	body, err := toml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("render example config: %w", err)
	}
	return append([]byte(exampleHeader), body...), nil
}

// CheckTOML rejects TOML documents that contain keys Config does not know,
// so that typos are reported instead of silently ignored.
func CheckTOML(data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg Config
	err := dec.Decode(&cfg)
	if err == nil {
		return nil
	}
	var missing *toml.StrictMissingError
	if errors.As(err, &missing) {
		return fmt.Errorf("unknown configuration keys:\n%s", missing.String())
	}
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		return fmt.Errorf("invalid TOML:\n%s", decodeErr.String())
	}
	return err
}

// CheckYAML is CheckTOML for YAML documents.
func CheckYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
