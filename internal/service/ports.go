package service

import (
	"context"

	"github.com/spec-kit/freshdesk-migrator/internal/domain"
)

// SourceTicketReader reads tickets and users from the Source helpdesk.
// Implementations return errorutil ticket/user not-found errors when the
// Source reports the entity absent.
type SourceTicketReader interface {
	GetTicket(ctx context.Context, id int64) (*domain.SourceTicket, error)
	GetUser(ctx context.Context, id int64) (*domain.SourceUser, error)
}

// SourceLinker builds the human-facing permalink of a Source ticket.
type SourceLinker interface {
	TicketURL(displayID int64) string
}

// TargetTicketWriter creates tickets on the Target helpdesk and appends
// comment updates to them. Failures are errorutil remote write errors.
type TargetTicketWriter interface {
	CreateTicket(ctx context.Context, draft *domain.TargetTicketDraft) (*domain.CreatedTicket, error)
	UpdateTicket(ctx context.Context, location string, op domain.CommentOp) error
}
