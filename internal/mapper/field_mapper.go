// Package mapper translates Freshdesk tickets into Zendesk ticket drafts.
package mapper

import (
	"sort"

	"go.uber.org/zap"

	"github.com/spec-kit/freshdesk-migrator/internal/domain"
	"github.com/spec-kit/freshdesk-migrator/internal/slug"
	"github.com/spec-kit/freshdesk-migrator/pkg/util/errorutil"
)

var builtinStatuses = map[int]domain.TargetStatus{
	1: domain.TargetStatusNew,
	2: domain.TargetStatusOpen,
	3: domain.TargetStatusPending,
	4: domain.TargetStatusSolved,
	5: domain.TargetStatusSolved,
}

var builtinPriorities = map[int]domain.TargetPriority{
	1: domain.TargetPriorityLow,
	2: domain.TargetPriorityNormal,
	3: domain.TargetPriorityHigh,
	4: domain.TargetPriorityUrgent,
}

// Mapping is the outcome of mapping one Source ticket.
type Mapping struct {
	Draft          domain.TargetTicketDraft
	ResolvedStatus domain.TargetStatus
	// StatusTag is the slugified status-migration label, empty when none applied.
	StatusTag string
}

// FieldMapper applies a fixed MappingConfig to Source tickets.
type FieldMapper struct {
	cfg    domain.MappingConfig
	logger *zap.Logger
}

// NewFieldMapper builds a mapper. A nil logger discards diagnostics.
func NewFieldMapper(cfg domain.MappingConfig, logger *zap.Logger) *FieldMapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FieldMapper{cfg: cfg, logger: logger}
}

// Map builds the Target draft for ticket. The draft is always created as
// "new"; the status Target should end in is returned as ResolvedStatus.
func (m *FieldMapper) Map(ticket *domain.SourceTicket, user *domain.SourceUser, sourceTicketURL string) (*Mapping, error) {
	draft := domain.TargetTicketDraft{
		Subject:     ticket.Subject,
		Description: ticket.Description,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		Requester: domain.Requester{
			Name:  user.Name,
			Email: user.Email,
		},
		Tags:     []string{slug.Make(ticket.TicketType), domain.ImportTag},
		Status:   domain.TargetStatusNew,
		Priority: MapPriority(ticket.Priority),
	}

	resolved, statusTag := m.ResolveStatus(ticket.Status)
	if statusTag != "" {
		draft.Tags = append(draft.Tags, statusTag)
	}
	if resolved == domain.TargetStatusSolved {
		solvedAt := ticket.UpdatedAt
		draft.SolvedAt = &solvedAt
	}

	fields, err := m.customFields(ticket, sourceTicketURL)
	if err != nil {
		return nil, err
	}
	draft.CustomFields = fields

	if len(m.cfg.TypeMigration) > 0 {
		if targetType, ok := m.cfg.TypeMigration[ticket.TicketType]; ok {
			draft.Type = targetType
		} else {
			m.logger.Warn("no ticket type migration",
				zap.Int64("ticket_id", ticket.ID),
				zap.String("ticket_type", ticket.TicketType))
		}
	}

	return &Mapping{Draft: draft, ResolvedStatus: resolved, StatusTag: statusTag}, nil
}

// ResolveStatus returns the Target status for a Source status code and the
// tag to add when a status migration entry was used.
func (m *FieldMapper) ResolveStatus(code int) (domain.TargetStatus, string) {
	if status, ok := builtinStatuses[code]; ok {
		return status, ""
	}
	if migration, ok := m.cfg.StatusMigration[code]; ok {
		return migration.Status, slug.Make(migration.Label)
	}
	return domain.TargetStatusOpen, ""
}

// MapPriority translates a Source priority code; unknown codes map to low.
func MapPriority(code int) domain.TargetPriority {
	if priority, ok := builtinPriorities[code]; ok {
		return priority
	}
	return domain.TargetPriorityLow
}

func (m *FieldMapper) customFields(ticket *domain.SourceTicket, sourceTicketURL string) ([]domain.CustomFieldValue, error) {
	names := make([]string, 0, len(m.cfg.CustomFields))
	for name := range m.cfg.CustomFields {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]domain.CustomFieldValue, 0, len(names)+1)
	for _, name := range names {
		value, ok := ticket.CustomField[name]
		if !ok {
			return nil, errorutil.NewMissingCustomField(ticket.ID, name)
		}
		fields = append(fields, domain.CustomFieldValue{ID: m.cfg.CustomFields[name], Value: value})
	}
	if m.cfg.FreshdeskURLFieldID != "" {
		fields = append(fields, domain.CustomFieldValue{ID: m.cfg.FreshdeskURLFieldID, Value: sourceTicketURL})
	}
	return fields, nil
}
