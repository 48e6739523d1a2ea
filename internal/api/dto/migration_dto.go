package dto

import (
	"time"

	"github.com/spec-kit/freshdesk-migrator/internal/domain"
	"github.com/spec-kit/freshdesk-migrator/pkg/util/errorutil"
)

// StartRangeRequest payload.
type StartRangeRequest struct {
	MaxTicketID int64 `json:"max_ticket_id"`
}

// RunAccepted is returned when a range run is started.
type RunAccepted struct {
	RunID       string `json:"run_id"`
	MaxTicketID int64  `json:"max_ticket_id"`
}

// MigrationError describes why a ticket failed.
type MigrationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MigrationResultResponse is one ticket outcome.
type MigrationResultResponse struct {
	SourceTicketID     int64                 `json:"source_ticket_id"`
	TargetTicketID     int64                 `json:"target_ticket_id,omitempty"`
	TargetURL          string                `json:"target_url,omitempty"`
	State              domain.MigrationState `json:"state"`
	FailedIn           domain.MigrationState `json:"failed_in,omitempty"`
	CommentsAttempted  int                   `json:"comments_attempted"`
	CommentsFailed     int                   `json:"comments_failed"`
	FinalStatusApplied bool                  `json:"final_status_applied"`
	Error              *MigrationError       `json:"error,omitempty"`
}

// RunResponse describes a recorded batch run.
type RunResponse struct {
	ID           string                 `json:"id"`
	MaxTicketID  int64                  `json:"max_ticket_id"`
	SuccessCount int                    `json:"success_count"`
	FailCount    int                    `json:"fail_count"`
	StartedAt    time.Time              `json:"started_at"`
	FinishedAt   *time.Time             `json:"finished_at"`
	Tickets      []TicketRecordResponse `json:"tickets"`
}

// TicketRecordResponse is a ledger row.
type TicketRecordResponse struct {
	ID                 string                `json:"id"`
	RunID              *string               `json:"run_id"`
	SourceTicketID     int64                 `json:"source_ticket_id"`
	TargetTicketID     *int64                `json:"target_ticket_id"`
	TargetURL          *string               `json:"target_url"`
	State              domain.MigrationState `json:"state"`
	ErrorCode          *string               `json:"error_code"`
	ErrorMessage       *string               `json:"error_message"`
	CommentsAttempted  int                   `json:"comments_attempted"`
	CommentsFailed     int                   `json:"comments_failed"`
	FinalStatusApplied bool                  `json:"final_status_applied"`
	CreatedAt          time.Time             `json:"created_at"`
}

// NewMigrationResultResponse converts a result.
func NewMigrationResultResponse(result domain.MigrationResult) MigrationResultResponse {
	resp := MigrationResultResponse{
		SourceTicketID:     result.SourceTicketID,
		TargetTicketID:     result.TargetTicketID,
		TargetURL:          result.TargetURL,
		State:              result.State,
		FailedIn:           result.FailedIn,
		CommentsAttempted:  result.CommentsAttempted,
		CommentsFailed:     result.CommentsFailed,
		FinalStatusApplied: result.FinalStatusApplied,
	}
	if result.Err != nil {
		resp.Error = &MigrationError{Code: errorutil.Code(result.Err), Message: result.Err.Error()}
	}
	return resp
}

// NewRunResponse converts a run and its ticket records.
func NewRunResponse(run *domain.MigrationRun, records []domain.TicketMigrationRecord) RunResponse {
	return RunResponse{
		ID:           run.ID,
		MaxTicketID:  run.MaxTicketID,
		SuccessCount: run.SuccessCount,
		FailCount:    run.FailCount,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		Tickets:      NewTicketRecordResponses(records),
	}
}

// NewTicketRecordResponses converts ledger rows.
func NewTicketRecordResponses(records []domain.TicketMigrationRecord) []TicketRecordResponse {
	out := make([]TicketRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, TicketRecordResponse{
			ID:                 r.ID,
			RunID:              r.RunID,
			SourceTicketID:     r.SourceTicketID,
			TargetTicketID:     r.TargetTicketID,
			TargetURL:          r.TargetURL,
			State:              r.State,
			ErrorCode:          r.ErrorCode,
			ErrorMessage:       r.ErrorMessage,
			CommentsAttempted:  r.CommentsAttempted,
			CommentsFailed:     r.CommentsFailed,
			FinalStatusApplied: r.FinalStatusApplied,
			CreatedAt:          r.CreatedAt,
		})
	}
	return out
}
