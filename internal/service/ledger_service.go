package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/freshdesk-migrator/internal/domain"
	"github.com/spec-kit/freshdesk-migrator/internal/events"
	"github.com/spec-kit/freshdesk-migrator/internal/observability"
	"github.com/spec-kit/freshdesk-migrator/internal/repository"
	"github.com/spec-kit/freshdesk-migrator/pkg/util/errorutil"
)

// LedgerService records migration events in the ledger and in metrics.
type LedgerService struct {
	dispatcher events.Dispatcher
	repo       repository.MigrationRepository
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewLedgerService creates the service. A nil repo keeps only metrics.
func NewLedgerService(dispatcher events.Dispatcher, repo repository.MigrationRepository, metrics *observability.Metrics, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		dispatcher: dispatcher,
		repo:       repo,
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (l *LedgerService) RegisterHandlers() {
	if l.dispatcher == nil {
		return
	}
	l.dispatcher.Subscribe(events.EventBatchStarted, l.handleBatchStarted)
	l.dispatcher.Subscribe(events.EventBatchCompleted, l.handleBatchCompleted)
	l.dispatcher.Subscribe(events.EventTicketMigrated, l.handleTicketOutcome)
	l.dispatcher.Subscribe(events.EventTicketMigrationFailed, l.handleTicketOutcome)
	l.dispatcher.Subscribe(events.EventCommentReplayFailed, l.handleCommentReplayFailed)
}

// Run returns a recorded batch run.
func (l *LedgerService) Run(ctx context.Context, runID string) (*domain.MigrationRun, []domain.TicketMigrationRecord, error) {
	if l.repo == nil {
		return nil, nil, errorutil.NewNotFound("migration run", map[string]any{"run_id": runID})
	}
	run, err := l.repo.GetRun(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	records, err := l.repo.ListByRun(ctx, runID, 0, 0)
	if err != nil {
		return nil, nil, err
	}
	return run, records, nil
}

// TicketHistory returns every recorded attempt for a Source ticket, newest first.
func (l *LedgerService) TicketHistory(ctx context.Context, sourceTicketID int64) ([]domain.TicketMigrationRecord, error) {
	if l.repo == nil {
		return []domain.TicketMigrationRecord{}, nil
	}
	return l.repo.ListBySourceTicket(ctx, sourceTicketID)
}

func (l *LedgerService) handleBatchStarted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BatchStartedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	l.logger.Info("BatchStarted", zap.String("run_id", event.RunID), zap.Int64("max_ticket_id", payload.MaxTicketID))
	if l.repo == nil {
		return nil
	}
	return l.repo.CreateRun(ctx, &domain.MigrationRun{
		ID:          event.RunID,
		MaxTicketID: payload.MaxTicketID,
		StartedAt:   payload.StartedAt,
	})
}

func (l *LedgerService) handleBatchCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BatchCompletedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	l.logger.Info("BatchCompleted",
		zap.String("run_id", event.RunID),
		zap.Int("success_count", payload.SuccessCount),
		zap.Int("fail_count", payload.FailCount))
	if l.repo == nil {
		return nil
	}
	return l.repo.FinishRun(ctx, event.RunID, payload.SuccessCount, payload.FailCount, payload.FinishedAt)
}

func (l *LedgerService) handleTicketOutcome(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketOutcomePayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	result := payload.Result

	l.metrics.RecordTicket(result.Succeeded(), string(result.FailedIn))
	if result.TargetTicketID != 0 {
		l.metrics.RecordCommentWrites(result.CommentsAttempted, result.CommentsFailed)
		if !result.FinalStatusApplied {
			l.metrics.RecordFinalStatusMissed()
		}
	}

	if l.repo == nil {
		return nil
	}
	return l.repo.RecordTicket(ctx, recordFromResult(event.RunID, result))
}

func (l *LedgerService) handleCommentReplayFailed(_ context.Context, event events.Event) error {
	l.logger.Debug("CommentReplayFailed",
		zap.String("run_id", event.RunID),
		zap.Int64("ticket_id", event.SourceTicketID),
		zap.Any("payload", event.Payload))
	return nil
}

func recordFromResult(runID string, result domain.MigrationResult) *domain.TicketMigrationRecord {
	record := &domain.TicketMigrationRecord{
		SourceTicketID:     result.SourceTicketID,
		State:              result.State,
		CommentsAttempted:  result.CommentsAttempted,
		CommentsFailed:     result.CommentsFailed,
		FinalStatusApplied: result.FinalStatusApplied,
	}
	if runID != "" {
		record.RunID = &runID
	}
	if result.TargetTicketID != 0 {
		id := result.TargetTicketID
		record.TargetTicketID = &id
	}
	if result.TargetURL != "" {
		u := result.TargetURL
		record.TargetURL = &u
	}
	if result.Err != nil {
		code := errorutil.Code(result.Err)
		msg := result.Err.Error()
		record.ErrorCode = &code
		record.ErrorMessage = &msg
	}
	return record
}
