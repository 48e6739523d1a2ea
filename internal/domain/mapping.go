package domain

// StatusMigration maps a non built-in Source status code onto Target.
type StatusMigration struct {
	Status TargetStatus `yaml:"status"`
	Label  string       `yaml:"label"`
}

// MappingConfig holds the translation tables used for every ticket of a run.
// It is built once and treated as read-only afterwards.
type MappingConfig struct {
	CustomFields        map[string]string       `yaml:"custom_fields"`
	FreshdeskURLFieldID string                  `yaml:"freshdesk_url_field_id"`
	TypeMigration       map[string]string       `yaml:"type_migration"`
	StatusMigration     map[int]StatusMigration `yaml:"status_migration"`
}
