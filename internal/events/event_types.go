package events

import (
	"time"

	"github.com/spec-kit/freshdesk-migrator/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketMigrated        EventType = "ticket_migrated"
	EventTicketMigrationFailed EventType = "ticket_migration_failed"
	EventCommentReplayFailed   EventType = "comment_replay_failed"
	EventBatchStarted          EventType = "batch_started"
	EventBatchCompleted        EventType = "batch_completed"
)

// Event represents a migration event emitted by services.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	RunID          string      `json:"run_id,omitempty"`
	SourceTicketID int64       `json:"source_ticket_id,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// TicketOutcomePayload is published for ticket_migrated and ticket_migration_failed.
type TicketOutcomePayload struct {
	Result domain.MigrationResult `json:"result"`
}

// CommentReplayFailedPayload payload.
type CommentReplayFailedPayload struct {
	TargetTicketID int64  `json:"target_ticket_id"`
	OpIndex        int    `json:"op_index"`
	Final          bool   `json:"final"`
	Error          string `json:"error"`
}

// BatchStartedPayload payload.
type BatchStartedPayload struct {
	MaxTicketID int64     `json:"max_ticket_id"`
	StartedAt   time.Time `json:"started_at"`
}

// BatchCompletedPayload payload.
type BatchCompletedPayload struct {
	SuccessCount int       `json:"success_count"`
	FailCount    int       `json:"fail_count"`
	FinishedAt   time.Time `json:"finished_at"`
}
