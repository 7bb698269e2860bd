package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-intake/pkg/registry"
)

func TestPackageName(t *testing.T) {
	assert.Equal(t, "smsalert", packageName("sms-alert"))
	assert.Equal(t, "webhook", packageName("Webhook"))
}

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "webhook")
	data := newSinkData(registry.Sink{
		ID:          "webhook",
		DisplayName: "Webhook",
		Description: "Posts leads to an HTTP endpoint",
		Backend:     "http",
	})

	written, err := generate(dir, data, false)
	require.NoError(t, err)
	assert.Len(t, written, 3)

	service, err := os.ReadFile(filepath.Join(dir, "service.go"))
	require.NoError(t, err)
	assert.Contains(t, string(service), "// Package webhook posts leads to an HTTP endpoint.")
	assert.Contains(t, string(service), `const Name = "webhook"`)

	config, err := os.ReadFile(filepath.Join(dir, "config.go"))
	require.NoError(t, err)
	assert.Contains(t, string(config), "`mapstructure:\"api_key\"`")

	_, err = generate(dir, data, false)
	assert.Error(t, err, "existing files must not be overwritten without force")

	_, err = generate(dir, data, true)
	assert.NoError(t, err)
}
