package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/freshdesk-migrator/internal/api/dto"
	"github.com/spec-kit/freshdesk-migrator/internal/domain"
	apperrors "github.com/spec-kit/freshdesk-migrator/pkg/util/errorutil"
)

// Migrator runs ticket migrations.
type Migrator interface {
	MigrateOne(ctx context.Context, ticketID int64) domain.MigrationResult
	MigrateRangeWithRunID(ctx context.Context, runID string, maxTicketID int64) domain.BatchResult
}

// Ledger reads recorded migrations.
type Ledger interface {
	Run(ctx context.Context, runID string) (*domain.MigrationRun, []domain.TicketMigrationRecord, error)
	TicketHistory(ctx context.Context, sourceTicketID int64) ([]domain.TicketMigrationRecord, error)
}

// MigrationsHandler exposes migration endpoints. At most one migration, a
// single ticket or a background range run, is in progress at a time.
type MigrationsHandler struct {
	migrator Migrator
	ledger   Ledger
	logger   *zap.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu        sync.Mutex
	activeRun string
	newRunID  func() string
}

// NewMigrationsHandler constructs handler.
func NewMigrationsHandler(migrator Migrator, ledger Ledger, logger *zap.Logger) *MigrationsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MigrationsHandler{
		migrator: migrator,
		ledger:   ledger,
		logger:   logger,
		baseCtx:  ctx,
		cancel:   cancel,
		newRunID: uuid.NewString,
	}
}

// MigrateTicket POST /migrations/tickets/:id.
func (h *MigrationsHandler) MigrateTicket(c *fiber.Ctx) error {
	id, err := parseTicketID(c.Params("id"))
	if err != nil {
		return err
	}
	if err := h.acquire(fmt.Sprintf("ticket-%d", id)); err != nil {
		return err
	}
	defer h.clearActive()

	result := h.migrator.MigrateOne(c.UserContext(), id)
	status := http.StatusOK
	if !result.Succeeded() {
		status = http.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.NewMigrationResultResponse(result)})
}

// StartRange POST /migrations/range.
func (h *MigrationsHandler) StartRange(c *fiber.Ctx) error {
	var req dto.StartRangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.MaxTicketID < 0 {
		return apperrors.NewValidationError("max_ticket_id must not be negative", map[string]any{"max_ticket_id": req.MaxTicketID})
	}

	runID := h.newRunID()
	if err := h.acquire(runID); err != nil {
		return err
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.clearActive()
		h.migrator.MigrateRangeWithRunID(h.baseCtx, runID, req.MaxTicketID)
	}()

	h.logger.Info("migration run started", zap.String("run_id", runID), zap.Int64("max_ticket_id", req.MaxTicketID))
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": dto.RunAccepted{RunID: runID, MaxTicketID: req.MaxTicketID}})
}

// GetRun GET /migrations/runs/:id.
func (h *MigrationsHandler) GetRun(c *fiber.Ctx) error {
	run, records, err := h.ledger.Run(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRunResponse(run, records)})
}

// TicketHistory GET /migrations/tickets/:id.
func (h *MigrationsHandler) TicketHistory(c *fiber.Ctx) error {
	id, err := parseTicketID(c.Params("id"))
	if err != nil {
		return err
	}
	records, err := h.ledger.TicketHistory(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketRecordResponses(records)})
}

// ActiveRun returns the id of the migration in progress, if any. Single
// ticket migrations report "ticket-<id>".
func (h *MigrationsHandler) ActiveRun() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.activeRun, h.activeRun != ""
}

// Shutdown cancels a running batch and waits for it to stop between tickets.
func (h *MigrationsHandler) Shutdown() {
	h.cancel()
	h.wg.Wait()
}

// acquire claims the single migration slot shared by ticket and range runs.
func (h *MigrationsHandler) acquire(runID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.activeRun != "" {
		return apperrors.NewConflict("a migration is already in progress", map[string]any{"run_id": h.activeRun})
	}
	h.activeRun = runID
	return nil
}

func (h *MigrationsHandler) clearActive() {
	h.mu.Lock()
	h.activeRun = ""
	h.mu.Unlock()
}

func parseTicketID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("ticket id must be a positive integer", map[string]any{"id": raw})
	}
	return id, nil
}
