package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/freshdesk-migrator/internal/domain"
	"github.com/spec-kit/freshdesk-migrator/internal/events"
	"github.com/spec-kit/freshdesk-migrator/internal/mapper"
	"github.com/spec-kit/freshdesk-migrator/internal/observability"
	"github.com/spec-kit/freshdesk-migrator/pkg/util/errorutil"
)

type memoryLedger struct {
	mu      sync.Mutex
	runs    map[string]*domain.MigrationRun
	records []domain.TicketMigrationRecord
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{runs: map[string]*domain.MigrationRun{}}
}

func (m *memoryLedger) CreateRun(_ context.Context, run *domain.MigrationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *run
	m.runs[run.ID] = &copied
	return nil
}

func (m *memoryLedger) FinishRun(_ context.Context, id string, successCount, failCount int, finishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return errorutil.NewNotFound("migration run", nil)
	}
	run.SuccessCount = successCount
	run.FailCount = failCount
	run.FinishedAt = &finishedAt
	return nil
}

func (m *memoryLedger) GetRun(_ context.Context, id string) (*domain.MigrationRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, errorutil.NewNotFound("migration run", map[string]any{"run_id": id})
	}
	return run, nil
}

func (m *memoryLedger) RecordTicket(_ context.Context, record *domain.TicketMigrationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *record)
	return nil
}

func (m *memoryLedger) ListByRun(_ context.Context, runID string, _, _ int) ([]domain.TicketMigrationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TicketMigrationRecord
	for _, r := range m.records {
		if r.RunID != nil && *r.RunID == runID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryLedger) ListBySourceTicket(_ context.Context, sourceTicketID int64) ([]domain.TicketMigrationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TicketMigrationRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].SourceTicketID == sourceTicketID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func TestLedgerRecordsBatchThroughDispatcher(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	ledger := newMemoryLedger()
	metrics := observability.NewMetrics()
	ledgerService := NewLedgerService(dispatcher, ledger, metrics, nil)
	ledgerService.RegisterHandlers()

	reader := newFakeReader()
	reader.users[10] = &domain.SourceUser{ID: 10, Name: "Jane", Email: "jane@example.com"}
	for id := int64(1); id <= 3; id++ {
		reader.tickets[id] = makeTicket(id, 2)
	}
	writer := newFakeWriter()
	writer.failCreateFor["ticket 2"] = true
	writer.failUpdate[locationFor(902)] = map[int]bool{0: true}

	svc := NewMigrationService(MigrationDependencies{
		Reader:     reader,
		Linker:     fakeLinker{},
		Writer:     writer,
		Mapper:     mapper.NewFieldMapper(domain.MappingConfig{}, nil),
		Dispatcher: dispatcher,
	})

	batch := svc.MigrateRangeWithRunID(context.Background(), "run-1", 3)
	require.Equal(t, 2, batch.SuccessCount)

	run, records, err := ledgerService.Run(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), run.MaxTicketID)
	assert.Equal(t, 2, run.SuccessCount)
	assert.Equal(t, 1, run.FailCount)
	require.NotNil(t, run.FinishedAt)
	require.Len(t, records, 3)

	failed := records[1]
	assert.Equal(t, int64(2), failed.SourceTicketID)
	assert.Equal(t, domain.MigrationStateFailed, failed.State)
	require.NotNil(t, failed.ErrorCode)
	assert.Equal(t, errorutil.CodeRemoteWriteFailed, *failed.ErrorCode)
	assert.Nil(t, failed.TargetTicketID)

	third := records[2]
	require.NotNil(t, third.TargetTicketID)
	assert.Equal(t, int64(902), *third.TargetTicketID)
	assert.False(t, third.FinalStatusApplied)
	assert.Nil(t, third.ErrorCode)

	expected := `
# HELP migrator_final_status_missing_total Tickets created on Target whose final status update failed.
# TYPE migrator_final_status_missing_total counter
migrator_final_status_missing_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "migrator_final_status_missing_total"))
	history, err := ledgerService.TicketHistory(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestLedgerWithoutRepository(t *testing.T) {
	ledgerService := NewLedgerService(events.NewInMemoryDispatcher(nil), nil, nil, nil)
	ledgerService.RegisterHandlers()

	_, _, err := ledgerService.Run(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errorutil.IsNotFound(err))

	history, err := ledgerService.TicketHistory(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRecordFromResultStandaloneTicket(t *testing.T) {
	record := recordFromResult("", domain.MigrationResult{
		SourceTicketID:     4,
		TargetTicketID:     12,
		TargetURL:          "https://acme.zendesk.com/api/v2/tickets/12.json",
		State:              domain.MigrationStateDone,
		CommentsAttempted:  1,
		FinalStatusApplied: true,
	})
	assert.Nil(t, record.RunID)
	require.NotNil(t, record.TargetURL)
	assert.Equal(t, "https://acme.zendesk.com/api/v2/tickets/12.json", *record.TargetURL)
	assert.True(t, record.FinalStatusApplied)
}
