// Package seed loads reference data and generates demo content for
// development databases.
package seed

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"foodgram/internal/models"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format is an ingredient dataset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the dataset format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported ingredient dataset extension %q", filepath.Ext(path))
	}
}

// DecodeIngredients reads a list of {name, measurement_unit} records.
func DecodeIngredients(r io.Reader, format Format) ([]models.Ingredient, error) {
	var items []models.Ingredient
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&items); err != nil {
			return nil, fmt.Errorf("decode ingredients json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&items); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode ingredients yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown ingredient dataset format %q", format)
	}
	return items, nil
}

// LoadIngredients reads an ingredient dataset from path.
func LoadIngredients(path string) ([]models.Ingredient, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path) // #nosec G304 -- operator-supplied dataset path
	if err != nil {
		return nil, fmt.Errorf("open ingredient dataset: %w", err)
	}
	defer func() { _ = f.Close() }()
	return DecodeIngredients(f, format)
}
