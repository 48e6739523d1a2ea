package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/freshdesk-migrator/internal/domain"
	"github.com/spec-kit/freshdesk-migrator/internal/events"
	"github.com/spec-kit/freshdesk-migrator/internal/mapper"
	"github.com/spec-kit/freshdesk-migrator/internal/planner"
	"github.com/spec-kit/freshdesk-migrator/pkg/util/errorutil"
)

// MigrationService drives tickets from Source to Target one at a time.
type MigrationService struct {
	reader     SourceTicketReader
	linker     SourceLinker
	writer     TargetTicketWriter
	mapper     *mapper.FieldMapper
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// MigrationDependencies bundles collaborators for the migration service.
type MigrationDependencies struct {
	Reader     SourceTicketReader
	Linker     SourceLinker
	Writer     TargetTicketWriter
	Mapper     *mapper.FieldMapper
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewMigrationService constructs the service.
func NewMigrationService(deps MigrationDependencies) *MigrationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MigrationService{
		reader:     deps.Reader,
		linker:     deps.Linker,
		writer:     deps.Writer,
		mapper:     deps.Mapper,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// MigrateOne migrates a single Source ticket outside of a batch run.
func (s *MigrationService) MigrateOne(ctx context.Context, ticketID int64) domain.MigrationResult {
	return s.migrateSafely(ctx, "", ticketID)
}

// MigrateRange migrates Source tickets 1..maxTicketID in order. A failing
// ticket is tallied and the run moves on; only context cancellation stops
// the run early.
func (s *MigrationService) MigrateRange(ctx context.Context, maxTicketID int64) domain.BatchResult {
	return s.MigrateRangeWithRunID(ctx, uuid.NewString(), maxTicketID)
}

// MigrateRangeWithRunID is MigrateRange with a caller-chosen run id.
func (s *MigrationService) MigrateRangeWithRunID(ctx context.Context, runID string, maxTicketID int64) domain.BatchResult {
	batch := domain.BatchResult{RunID: runID, StartedAt: s.now()}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventBatchStarted,
		RunID:   runID,
		Payload: events.BatchStartedPayload{MaxTicketID: maxTicketID, StartedAt: batch.StartedAt},
	})

	for id := int64(1); id <= maxTicketID; id++ {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("migration run cancelled",
				zap.String("run_id", runID),
				zap.Int64("next_ticket_id", id),
				zap.Error(err))
			break
		}
		result := s.migrateSafely(ctx, runID, id)
		if result.Succeeded() {
			batch.SuccessCount++
		} else {
			batch.FailCount++
			s.logger.Error("failed ticket migration",
				zap.String("run_id", runID),
				zap.Int64("ticket_id", id),
				zap.String("failed_in", string(result.FailedIn)),
				zap.String("code", errorutil.Code(result.Err)),
				zap.Error(result.Err))
		}
		batch.Results = append(batch.Results, result)
	}

	batch.FinishedAt = s.now()
	s.logger.Info(fmt.Sprintf("Migrated %d tickets and %d fails", batch.SuccessCount, batch.FailCount),
		zap.String("run_id", runID),
		zap.Int("success_count", batch.SuccessCount),
		zap.Int("fail_count", batch.FailCount),
		zap.Duration("elapsed", batch.FinishedAt.Sub(batch.StartedAt)))
	s.publishEvent(ctx, events.Event{
		Type:  events.EventBatchCompleted,
		RunID: runID,
		Payload: events.BatchCompletedPayload{
			SuccessCount: batch.SuccessCount,
			FailCount:    batch.FailCount,
			FinishedAt:   batch.FinishedAt,
		},
	})
	return batch
}

func (s *MigrationService) migrateSafely(ctx context.Context, runID string, ticketID int64) domain.MigrationResult {
	result := domain.MigrationResult{SourceTicketID: ticketID, State: domain.MigrationStateFetching}
	s.runGuarded(ctx, runID, &result)
	s.publishOutcome(ctx, runID, result)
	return result
}

func (s *MigrationService) runGuarded(ctx context.Context, runID string, result *domain.MigrationResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic during ticket migration",
				zap.Int64("ticket_id", result.SourceTicketID),
				zap.Any("panic", r))
			s.fail(result, errorutil.NewInternalError(fmt.Errorf("panic: %v", r)))
		}
	}()
	s.migrate(ctx, runID, result)
}

func (s *MigrationService) migrate(ctx context.Context, runID string, result *domain.MigrationResult) {
	log := s.logger.With(zap.Int64("ticket_id", result.SourceTicketID))
	if runID != "" {
		log = log.With(zap.String("run_id", runID))
	}
	log.Info("migrating freshdesk ticket")

	ticket, err := s.reader.GetTicket(ctx, result.SourceTicketID)
	if err != nil {
		s.fail(result, err)
		return
	}
	user, err := s.reader.GetUser(ctx, ticket.RequesterID)
	if err != nil {
		s.fail(result, err)
		return
	}

	result.State = domain.MigrationStateMapping
	sourceURL := s.linker.TicketURL(ticket.DisplayID)
	mapping, err := s.mapper.Map(ticket, user, sourceURL)
	if err != nil {
		s.fail(result, err)
		return
	}

	result.State = domain.MigrationStateCreating
	created, err := s.writer.CreateTicket(ctx, &mapping.Draft)
	if err != nil {
		log.Error("ticket create failed", zap.Error(err))
		s.fail(result, err)
		return
	}
	result.TargetTicketID = created.ID
	result.TargetURL = created.Location
	log.Info("ticket created on target",
		zap.Int64("target_ticket_id", created.ID),
		zap.String("location", created.Location))

	result.State = domain.MigrationStateReplayingComments
	ops := planner.Plan(ticket, mapping.ResolvedStatus, sourceURL, created.RequesterID)
	for i, op := range ops {
		final := i == len(ops)-1
		result.CommentsAttempted++
		if err := s.writer.UpdateTicket(ctx, created.Location, op); err != nil {
			result.CommentsFailed++
			log.Error("comment replay failed",
				zap.Int64("target_ticket_id", created.ID),
				zap.Int("op_index", i),
				zap.Bool("final", final),
				zap.Error(err))
			s.publishEvent(ctx, events.Event{
				Type:           events.EventCommentReplayFailed,
				RunID:          runID,
				SourceTicketID: result.SourceTicketID,
				Payload: events.CommentReplayFailedPayload{
					TargetTicketID: created.ID,
					OpIndex:        i,
					Final:          final,
					Error:          err.Error(),
				},
			})
			continue
		}
		if final {
			result.FinalStatusApplied = true
		}
	}
	if !result.FinalStatusApplied {
		log.Warn("final status not applied; target ticket left as new",
			zap.Int64("target_ticket_id", created.ID),
			zap.String("resolved_status", string(mapping.ResolvedStatus)))
	}

	result.State = domain.MigrationStateDone
	log.Info("ticket migrated",
		zap.Int64("target_ticket_id", created.ID),
		zap.Int("comments", result.CommentsAttempted),
		zap.Int("comments_failed", result.CommentsFailed))
}

func (s *MigrationService) fail(result *domain.MigrationResult, err error) {
	result.FailedIn = result.State
	result.State = domain.MigrationStateFailed
	result.Err = err
}

func (s *MigrationService) publishOutcome(ctx context.Context, runID string, result domain.MigrationResult) {
	eventType := events.EventTicketMigrated
	if !result.Succeeded() {
		eventType = events.EventTicketMigrationFailed
	}
	s.publishEvent(ctx, events.Event{
		Type:           eventType,
		RunID:          runID,
		SourceTicketID: result.SourceTicketID,
		Payload:        events.TicketOutcomePayload{Result: result},
	})
}

func (s *MigrationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
