package domain

import "time"

// MigrationState tracks where a single ticket migration stopped.
type MigrationState string

const (
	MigrationStateFetching          MigrationState = "FETCHING"
	MigrationStateMapping           MigrationState = "MAPPING"
	MigrationStateCreating          MigrationState = "CREATING"
	MigrationStateReplayingComments MigrationState = "REPLAYING_COMMENTS"
	MigrationStateDone              MigrationState = "DONE"
	MigrationStateFailed            MigrationState = "FAILED"
)

// MigrationResult is the outcome of migrating one Source ticket.
type MigrationResult struct {
	SourceTicketID     int64
	TargetTicketID     int64
	TargetURL          string
	State              MigrationState
	FailedIn           MigrationState
	Err                error
	CommentsAttempted  int
	CommentsFailed     int
	FinalStatusApplied bool
}

// Succeeded reports whether the ticket reached Done.
func (r MigrationResult) Succeeded() bool {
	return r.State == MigrationStateDone
}

// BatchResult aggregates a range run.
type BatchResult struct {
	RunID        string
	SuccessCount int
	FailCount    int
	Results      []MigrationResult
	StartedAt    time.Time
	FinishedAt   time.Time
}

// MigrationRun is a persisted batch run.
type MigrationRun struct {
	ID           string
	MaxTicketID  int64
	SuccessCount int
	FailCount    int
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// TicketMigrationRecord is a persisted per-ticket outcome.
type TicketMigrationRecord struct {
	ID                 string
	RunID              *string
	SourceTicketID     int64
	TargetTicketID     *int64
	TargetURL          *string
	State              MigrationState
	ErrorCode          *string
	ErrorMessage       *string
	CommentsAttempted  int
	CommentsFailed     int
	FinalStatusApplied bool
	CreatedAt          time.Time
}
