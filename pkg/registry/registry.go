// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

func LoadRegistry(path string) (*SinkRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg SinkRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Empty returns a registry with no sinks, stamped now.
func Empty() *SinkRegistry {
	return &SinkRegistry{
		Version:     "1.0.0",
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Sinks:       []Sink{},
	}
}

// Lookup finds a sink by id. A nil registry finds nothing.
func (r *SinkRegistry) Lookup(id string) (Sink, bool) {
	if r == nil {
		return Sink{}, false
	}
	for _, s := range r.Sinks {
		if s.ID == id {
			return s, true
		}
	}
	return Sink{}, false
}

// Add appends sink; ids must be unique.
func (r *SinkRegistry) Add(sink Sink) error {
	if _, exists := r.Lookup(sink.ID); exists {
		return fmt.Errorf("sink with ID %s already exists", sink.ID)
	}
	r.Sinks = append(r.Sinks, sink)
	r.touch()
	return nil
}

// Update sets one field of the sink with the given id.
func (r *SinkRegistry) Update(id, field, value string) error {
	for i := range r.Sinks {
		if r.Sinks[i].ID != id {
			continue
		}
		switch field {
		case "status":
			r.Sinks[i].Status = value
		case "displayName":
			r.Sinks[i].DisplayName = value
		case "description":
			r.Sinks[i].Description = value
		case "category":
			r.Sinks[i].Category = value
		case "backend":
			r.Sinks[i].Backend = value
		case "docs":
			r.Sinks[i].Docs = value
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		r.touch()
		return nil
	}
	return fmt.Errorf("sink with ID %s not found", id)
}

func (r *SinkRegistry) touch() {
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
}

// Validate checks required fields, unique ids and known categories/statuses.
func (r *SinkRegistry) Validate() error {
	if len(r.Sinks) == 0 {
		return fmt.Errorf("registry contains no sinks")
	}

	ids := make(map[string]bool)
	for _, sink := range r.Sinks {
		if sink.ID == "" {
			return fmt.Errorf("sink missing required field: ID")
		}
		if ids[sink.ID] {
			return fmt.Errorf("duplicate sink ID: %s", sink.ID)
		}
		ids[sink.ID] = true

		if sink.DisplayName == "" {
			return fmt.Errorf("sink %s missing required field: DisplayName", sink.ID)
		}
		if !slices.Contains(Categories, sink.Category) {
			return fmt.Errorf("sink %s has unknown category %q", sink.ID, sink.Category)
		}
		if sink.Status != "" && !slices.Contains(Statuses, sink.Status) {
			return fmt.Errorf("sink %s has unknown status %q", sink.ID, sink.Status)
		}
	}
	return nil
}

// Save writes the registry as indented JSON, creating parent directories.
func Save(reg *SinkRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
