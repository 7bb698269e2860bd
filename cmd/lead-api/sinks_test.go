package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-intake/internal/common/config"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/sinks/chatnotify"
	"lead-intake/internal/sinks/crmcontact"
	"lead-intake/internal/sinks/emailmarketing"
)

func sinkNames(t *testing.T, cfg *config.Config) ([]string, map[string]bool) {
	t.Helper()
	sinks, err := buildSinks(cfg, sinkDeps{}, logger.NewTestLogger(t))
	require.NoError(t, err)

	names := make([]string, 0, len(sinks))
	configured := make(map[string]bool, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
		configured[s.Name()] = s.Configured()
	}
	return names, configured
}

func TestBuildSinks_DefaultOrder(t *testing.T) {
	names, configured := sinkNames(t, &config.Config{})

	assert.Equal(t, defaultSinkOrder, names)
	for name, ok := range configured {
		assert.False(t, ok, "%s should be unconfigured without credentials", name)
	}
}

func TestBuildSinks_ConfiguredOrder(t *testing.T) {
	cfg := &config.Config{}
	cfg.Leads.Sinks = []string{chatnotify.Name, emailmarketing.Name}
	cfg.Leads.SinkTimeout = 3000
	cfg.Integrations.Brevo.APIKey = "xkeysib-test"
	cfg.Integrations.Brevo.ListID = 7

	names, configured := sinkNames(t, cfg)

	assert.Equal(t, []string{chatnotify.Name, emailmarketing.Name}, names)
	assert.True(t, configured[emailmarketing.Name])
	assert.False(t, configured[chatnotify.Name])
}

func TestBuildSinks_CRMUsesOAuthToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.Leads.Sinks = []string{crmcontact.Name}
	cfg.Integrations.Zoho.AuthToken = "1000.token"

	_, configured := sinkNames(t, cfg)
	assert.True(t, configured[crmcontact.Name])
}

func TestBuildSinks_UnknownName(t *testing.T) {
	cfg := &config.Config{}
	cfg.Leads.Sinks = []string{"fax"}

	_, err := buildSinks(cfg, sinkDeps{}, logger.NewNoOpLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"fax"`)
}
