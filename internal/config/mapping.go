package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/freshdesk-migrator/internal/domain"
)

// LoadMapping reads the mapping tables from a YAML file. A missing file
// yields an empty mapping.
func LoadMapping(path string) (domain.MappingConfig, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.MappingConfig{}, nil
	}
	if err != nil {
		return domain.MappingConfig{}, fmt.Errorf("open mapping file: %w", err)
	}
	defer f.Close()
	return DecodeMapping(f)
}

// DecodeMapping parses mapping YAML such as:
//
//	custom_fields:
//	  github_ticket_url_96745: "23732372"
//	freshdesk_url_field_id: "23732452"
//	type_migration:
//	  Question: question
//	status_migration:
//	  8: {status: pending, label: pending-on-github}
func DecodeMapping(r io.Reader) (domain.MappingConfig, error) {
	var mapping domain.MappingConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&mapping); err != nil && !errors.Is(err, io.EOF) {
		return domain.MappingConfig{}, fmt.Errorf("decode mapping: %w", err)
	}
	for code, migration := range mapping.StatusMigration {
		if !validTargetStatus(migration.Status) {
			return domain.MappingConfig{}, fmt.Errorf("status_migration %d: unknown target status %q", code, migration.Status)
		}
	}
	return mapping, nil
}

func validTargetStatus(status domain.TargetStatus) bool {
	switch status {
	case domain.TargetStatusNew, domain.TargetStatusOpen, domain.TargetStatusPending,
		domain.TargetStatusHold, domain.TargetStatusSolved, domain.TargetStatusClosed:
		return true
	}
	return false
}
