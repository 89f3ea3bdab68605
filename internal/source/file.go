// Package source reads conversation lists from disk and reports when they
// change.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/abelbrown/palette/internal/catalog"
)

// ErrNoPath is returned when a file source has no path configured.
var ErrNoPath = errors.New("no conversation file configured")

// fileFormat is the on-disk layout of a conversation file.
type fileFormat struct {
	Conversations []catalog.Conversation `yaml:"conversations"`
}

// File is a YAML-backed conversation source. Conversations keep the order
// they have in the file.
type File struct {
	path string
}

// NewFile returns a source reading path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Conversations reads and validates the file. A missing file yields an
// empty list.
func (f *File) Conversations(ctx context.Context) ([]catalog.Conversation, error) {
	if f.path == "" {
		return nil, ErrNoPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}

	for i, c := range doc.Conversations {
		if c.ID == "" {
			return nil, fmt.Errorf("parse %s: conversation %d has no id", f.path, i)
		}
	}
	return doc.Conversations, nil
}

// WriteFile stores convs at path in the format File reads.
func WriteFile(path string, convs []catalog.Conversation) error {
	if path == "" {
		return ErrNoPath
	}
	data, err := yaml.Marshal(fileFormat{Conversations: convs})
	if err != nil {
		return fmt.Errorf("encode conversations: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
