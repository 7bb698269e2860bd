// cmd/tools/sink-generator/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"lead-intake/pkg/registry"
)

// SinkData holds data for templates
type SinkData struct {
	ID          string
	Name        string
	PackageName string
	Description string
	Backend     string
}

const configTemplate = `package {{ .PackageName }}

import (
	"fmt"
	"time"
)

type Config struct {
	APIKey  string        ` + "`mapstructure:\"api_key\"`" + `
	BaseURL string        ` + "`mapstructure:\"base_url\"`" + `
	Timeout time.Duration ` + "`mapstructure:\"timeout\"`" + `
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
`

const serviceTemplate = `// Package {{ .PackageName }} {{ lowerFirst .Description }}
package {{ .PackageName }}

import (
	"context"
	"fmt"

	"lead-intake/internal/common/logger"
	"lead-intake/internal/leads"
)

const Name = "{{ .ID }}"

type Service struct {
	config *Config
	logger logger.Logger
}

func NewService(config *Config, log logger.Logger) *Service {
	return &Service{
		config: config,
		logger: log.WithFields(map[string]interface{}{"sink": Name}),
	}
}

func (s *Service) Name() string { return Name }

func (s *Service) Configured() bool { return s.config.Validate() == nil }

// Upsert delivers the lead to {{ .Backend }} and returns its reference id.
func (s *Service) Upsert(ctx context.Context, lead *leads.Submission) (string, error) {
	return "", fmt.Errorf("{{ .Backend }} upsert not implemented")
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lead-intake/internal/common/logger"
)

func TestConfigured(t *testing.T) {
	assert.False(t, NewService(DefaultConfig(), logger.NewNoOpLogger()).Configured())

	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	assert.True(t, NewService(cfg, logger.NewNoOpLogger()).Configured())
}

func TestName(t *testing.T) {
	assert.Equal(t, "{{ .ID }}", NewService(DefaultConfig(), logger.NewNoOpLogger()).Name())
}
`

var templates = map[string]string{
	"config.go":       configTemplate,
	"service.go":      serviceTemplate,
	"service_test.go": testTemplate,
}

func main() {
	sinkID := flag.String("sink", "", "Sink ID from registry (e.g., chat)")
	outputDir := flag.String("output", "./internal/sinks/", "Output directory for the generated sink")
	registryPath := flag.String("registry", "configs/sink-registry.json", "Path to the sink registry JSON file")
	force := flag.Bool("force", false, "Overwrite existing files")
	flag.Parse()

	if *sinkID == "" {
		fmt.Println("Usage: sink-generator --sink <id> [--output <dir>] [--registry <path>]")
		fmt.Println("\nExample:")
		fmt.Println("  go run ./cmd/tools/sink-generator --sink webhook")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	sink, ok := reg.Lookup(*sinkID)
	if !ok {
		fmt.Printf("Sink '%s' not found in registry %s\n", *sinkID, *registryPath)
		os.Exit(1)
	}

	data := newSinkData(sink)
	sinkDir := filepath.Join(*outputDir, data.PackageName)
	written, err := generate(sinkDir, data, *force)
	for _, path := range written {
		fmt.Printf("✓ Generated %s\n", path)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n✅ Sink scaffold generated successfully at: %s\n", sinkDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement Upsert in service.go\n")
	fmt.Printf("  2. Register the sink in cmd/lead-api/sinks.go\n")
	fmt.Printf("  3. Add its name to leads.sinks in configs/config.yaml\n")
}

func newSinkData(sink registry.Sink) SinkData {
	return SinkData{
		ID:          sink.ID,
		Name:        sink.DisplayName,
		PackageName: packageName(sink.ID),
		Description: strings.TrimSuffix(sink.Description, ".") + ".",
		Backend:     sink.Backend,
	}
}

// packageName turns a sink id like "sms-alert" into "smsalert".
func packageName(id string) string {
	return strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(id))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// generate renders every template into dir. Existing files are left alone
// unless force is set.
func generate(dir string, data SinkData, force bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	funcMap := template.FuncMap{"lowerFirst": lowerFirst}

	var written []string
	var errs []error
	for filename, tmplStr := range templates {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil && !force {
			errs = append(errs, fmt.Errorf("%s exists, use --force to overwrite", path))
			continue
		}

		tmpl, err := template.New(filename).Funcs(funcMap).Parse(tmplStr)
		if err != nil {
			errs = append(errs, fmt.Errorf("parse template %s: %w", filename, err))
			continue
		}

		var sb strings.Builder
		if err := tmpl.Execute(&sb, data); err != nil {
			errs = append(errs, fmt.Errorf("execute template %s: %w", filename, err))
			continue
		}
		if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", path, err))
			continue
		}
		written = append(written, path)
	}
	return written, errors.Join(errs...)
}
