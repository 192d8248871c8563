// Package casefile turns case documents into validated cases ready to be played.
package casefile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/models"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a case document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps user input such as "yml" or "JSON" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New("unknown case file format, use json or yaml")
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ParseJSON decodes a case document without validating it.
func ParseJSON(data []byte) (*models.Case, error) {
	var c models.Case
	if err := json.Unmarshal(bytes.TrimSpace(data), &c); err != nil {
		return nil, invalid("malformed JSON: " + err.Error())
	}
	return &c, nil
}

// ParseYAML decodes a YAML case document using the same field names as JSON.
func ParseYAML(data []byte) (*models.Case, error) {
	var document any
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, invalid("malformed YAML: " + err.Error())
	}
	if _, ok := document.(map[string]any); !ok {
		return nil, invalid("case document must be a mapping")
	}
	converted, err := json.Marshal(document)
	if err != nil {
		return nil, invalid("unsupported YAML value: " + err.Error())
	}
	return ParseJSON(converted)
}

// Parse decodes data in the given format without validating it.
func Parse(data []byte, format Format) (*models.Case, error) {
	if format == FormatYAML {
		return ParseYAML(data)
	}
	return ParseJSON(data)
}

// Import parses and validates a case document and gives it a fresh identity. Any id in the document is ignored.
//
// Rejections match [ErrInvalidCase] and carry a human-readable reason.
func Import(data []byte, format Format) (*models.Case, error) {
	c, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	if err = Validate(c); err != nil {
		return nil, err
	}
	applyDefaults(c)
	c.ID = NewID()
	return c, nil
}

// ImportFile imports the case document at path, picking the format from the extension.
func ImportFile(path string) (*models.Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read case file")
	}
	return Import(data, FormatFromPath(path))
}

// NewID returns a fresh case identity.
func NewID() string {
	return "case-" + uuid.NewString()
}
