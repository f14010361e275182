package cloudformation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/de-tools/changeguard/pkg/adapters"
	"github.com/de-tools/changeguard/pkg/models/api"
	"github.com/de-tools/changeguard/pkg/models/domain"
)

// FileSource reads a saved DescribeChangeSet document.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Changes(_ context.Context) ([]domain.ResourceChange, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read change set %q: %w", s.path, err)
	}

	var cs api.ChangeSet
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("failed to parse change set %q: %w", s.path, err)
	}
	return adapters.MapChangeSetApiToDomain(cs)
}

// StaticSource serves an already decoded change set.
type StaticSource struct {
	ChangeSet api.ChangeSet
}

func (s StaticSource) Changes(_ context.Context) ([]domain.ResourceChange, error) {
	return adapters.MapChangeSetApiToDomain(s.ChangeSet)
}
