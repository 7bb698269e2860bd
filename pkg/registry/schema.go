// pkg/registry/schema.go
package registry

// SinkRegistry is the catalog of sink adapters shipped with the service. It
// carries display metadata only; whether a sink runs is decided by configuration.
type SinkRegistry struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	Sinks       []Sink `json:"sinks"`
}

type Sink struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Backend     string   `json:"backend"`
	Status      string   `json:"status"`
	Docs        string   `json:"docs,omitempty"`
	Tags        []string `json:"tags"`
}

// Categories accepted by Validate.
var Categories = []string{"storage", "marketing", "crm", "productivity", "messaging", "email", "search", "workflow"}

// Statuses accepted by Validate.
var Statuses = []string{"planned", "in-progress", "completed", "verified"}
