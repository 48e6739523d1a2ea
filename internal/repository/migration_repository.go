package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/freshdesk-migrator/internal/domain"
)

// MigrationRepository persists batch runs and per-ticket outcomes.
type MigrationRepository interface {
	CreateRun(ctx context.Context, run *domain.MigrationRun) error
	FinishRun(ctx context.Context, id string, successCount, failCount int, finishedAt time.Time) error
	GetRun(ctx context.Context, id string) (*domain.MigrationRun, error)
	RecordTicket(ctx context.Context, record *domain.TicketMigrationRecord) error
	ListByRun(ctx context.Context, runID string, limit, offset int) ([]domain.TicketMigrationRecord, error)
	ListBySourceTicket(ctx context.Context, sourceTicketID int64) ([]domain.TicketMigrationRecord, error)
}

type migrationRepository struct {
	pool *pgxpool.Pool
}

// NewMigrationRepository instantiates repository.
func NewMigrationRepository(pool *pgxpool.Pool) MigrationRepository {
	return &migrationRepository{pool: pool}
}

func (r *migrationRepository) CreateRun(ctx context.Context, run *domain.MigrationRun) error {
	const query = `
        INSERT INTO migration_runs (id, max_ticket_id, started_at)
        VALUES ($1,$2,$3)`
	_, err := r.pool.Exec(ctx, query, run.ID, run.MaxTicketID, run.StartedAt)
	return err
}

func (r *migrationRepository) FinishRun(ctx context.Context, id string, successCount, failCount int, finishedAt time.Time) error {
	const query = `
        UPDATE migration_runs SET success_count=$1, fail_count=$2, finished_at=$3
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, successCount, failCount, finishedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *migrationRepository) GetRun(ctx context.Context, id string) (*domain.MigrationRun, error) {
	const query = `
        SELECT id, max_ticket_id, success_count, fail_count, started_at, finished_at
        FROM migration_runs WHERE id=$1`
	var run domain.MigrationRun
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.MaxTicketID,
		&run.SuccessCount,
		&run.FailCount,
		&run.StartedAt,
		&run.FinishedAt,
	); err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *migrationRepository) RecordTicket(ctx context.Context, record *domain.TicketMigrationRecord) error {
	const query = `
        INSERT INTO ticket_migrations (run_id, source_ticket_id, target_ticket_id, target_url, state,
            error_code, error_message, comments_attempted, comments_failed, final_status_applied)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		record.RunID,
		record.SourceTicketID,
		record.TargetTicketID,
		record.TargetURL,
		record.State,
		record.ErrorCode,
		record.ErrorMessage,
		record.CommentsAttempted,
		record.CommentsFailed,
		record.FinalStatusApplied,
	).Scan(&record.ID, &record.CreatedAt)
}

const recordColumns = `id, run_id, source_ticket_id, target_ticket_id, target_url, state,
               error_code, error_message, comments_attempted, comments_failed, final_status_applied, created_at`

func (r *migrationRepository) ListByRun(ctx context.Context, runID string, limit, offset int) ([]domain.TicketMigrationRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + recordColumns + `
        FROM ticket_migrations WHERE run_id=$1
        ORDER BY source_ticket_id ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, runID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *migrationRepository) ListBySourceTicket(ctx context.Context, sourceTicketID int64) ([]domain.TicketMigrationRecord, error) {
	query := `SELECT ` + recordColumns + `
        FROM ticket_migrations WHERE source_ticket_id=$1
        ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, sourceTicketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]domain.TicketMigrationRecord, error) {
	var result []domain.TicketMigrationRecord
	for rows.Next() {
		var rec domain.TicketMigrationRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.RunID,
			&rec.SourceTicketID,
			&rec.TargetTicketID,
			&rec.TargetURL,
			&rec.State,
			&rec.ErrorCode,
			&rec.ErrorMessage,
			&rec.CommentsAttempted,
			&rec.CommentsFailed,
			&rec.FinalStatusApplied,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
