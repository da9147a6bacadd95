// Package structure reads edge lists from structure files.
package structure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bayesview/domain/core"
	"bayesview/internal"
)

// Format names a structure file encoding
type Format string

const (
	FormatTuples Format = "tuples"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
)

// FormatOf picks the encoding from a file extension; unknown extensions are
// read as a tuple list
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTuples
	}
}

// Loader implements ports.StructureLoader
type Loader struct {
	logger *internal.Logger
}

// NewLoader creates a structure file loader
func NewLoader() *Loader {
	return &Loader{logger: internal.DefaultLogger.WithPrefix("structure")}
}

// Load reads path and returns its (parent, child) pairs
func (l *Loader) Load(ctx context.Context, path string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read structure file: %w", err)
	}

	edges, err := Parse(FormatOf(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	l.logger.Info("loaded %d edges from %s", len(edges), path)
	return edges, nil
}

// Parse decodes data in the given format. Entries are returned as found;
// network.Build checks that each one is a pair.
func Parse(format Format, data []byte) ([][]string, error) {
	switch format {
	case FormatJSON:
		return parseJSON(data)
	case FormatYAML:
		return parseYAML(data)
	case FormatTuples:
		return parseTuples(string(data))
	default:
		return nil, core.NewInvalidInputError("unknown structure format %q", format)
	}
}
