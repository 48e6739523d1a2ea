package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/freshdesk-migrator/internal/domain"
)

func TestLoadDefaultsAndDerivedURLs(t *testing.T) {
	t.Setenv("FRESHDESK_COMPANY", "fd-company")
	t.Setenv("ZENDESK_COMPANY", "zd-company")
	t.Setenv("REDIS_TTL_SECONDS", "120")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://fd-company.freshdesk.com", cfg.Freshdesk.APIBaseURL())
	assert.Equal(t, "https://zd-company.zendesk.com", cfg.Zendesk.APIBaseURL())
	assert.Equal(t, 2*time.Minute, cfg.Redis.TTL())
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout())
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
}

func TestLoadBaseURLOverride(t *testing.T) {
	t.Setenv("FRESHDESK_BASE_URL", "http://127.0.0.1:9000/")
	t.Setenv("ZENDESK_BASE_URL", "http://127.0.0.1:9001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.Freshdesk.APIBaseURL())
	assert.Equal(t, "http://127.0.0.1:9001", cfg.Zendesk.APIBaseURL())
}

func TestValidateRequiresBothHelpdesks(t *testing.T) {
	cfg := &Config{Freshdesk: FreshdeskConfig{Company: "fd"}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZENDESK_COMPANY")
	assert.NotContains(t, err.Error(), "FRESHDESK_COMPANY")
}

func TestDecodeMapping(t *testing.T) {
	doc := `
custom_fields:
  github_ticket_url_96745: "23732372"
freshdesk_url_field_id: "23732452"
type_migration:
  Question: Questions
  License Issue: Problems
status_migration:
  8:
    status: pending
    label: pending-on-gitub
`
	mapping, err := DecodeMapping(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"github_ticket_url_96745": "23732372"}, mapping.CustomFields)
	assert.Equal(t, "23732452", mapping.FreshdeskURLFieldID)
	assert.Equal(t, "Problems", mapping.TypeMigration["License Issue"])
	assert.Equal(t, domain.StatusMigration{Status: domain.TargetStatusPending, Label: "pending-on-gitub"}, mapping.StatusMigration[8])
}

func TestDecodeMappingRejectsUnknownStatus(t *testing.T) {
	_, err := DecodeMapping(strings.NewReader("status_migration:\n  9: {status: archived, label: x}\n"))
	assert.ErrorContains(t, err, "unknown target status")
}

func TestDecodeMappingRejectsUnknownKeys(t *testing.T) {
	_, err := DecodeMapping(strings.NewReader("custom_field: {a: b}\n"))
	assert.Error(t, err)
}

func TestLoadMappingMissingFileIsEmpty(t *testing.T) {
	mapping, err := LoadMapping(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, mapping.CustomFields)
	assert.Nil(t, mapping.TypeMigration)
}

func TestLoadMappingFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type_migration:\n  Bug: Incidents\n"), 0o600))

	mapping, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Bug": "Incidents"}, mapping.TypeMigration)
}
