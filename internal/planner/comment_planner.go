// Package planner turns a Freshdesk conversation into ordered Zendesk updates.
package planner

import (
	"fmt"
	"time"

	"github.com/spec-kit/freshdesk-migrator/internal/domain"
)

const summaryTemplate = `Ticket migrated from Freshdesk (#%d): %s
Created at: %s
Updated at: %s
Type: %s
Source: %s
Status: %s
`

// Plan returns one CommentOp per note, in Source order, followed by a private
// migration summary that carries resolvedStatus. Notes written by the ticket
// requester are attributed to createdRequesterID; all others are left to the
// migrating agent.
func Plan(ticket *domain.SourceTicket, resolvedStatus domain.TargetStatus, sourceTicketURL string, createdRequesterID int64) []domain.CommentOp {
	ops := make([]domain.CommentOp, 0, len(ticket.Notes)+1)
	for _, note := range ticket.Notes {
		op := domain.CommentOp{
			Public: !note.Private,
			Body:   note.Body,
		}
		if note.UserID == ticket.RequesterID {
			authorID := createdRequesterID
			op.AuthorID = &authorID
		}
		ops = append(ops, op)
	}

	status := resolvedStatus
	ops = append(ops, domain.CommentOp{
		Public: false,
		Body:   Summary(ticket, resolvedStatus, sourceTicketURL),
		Status: &status,
	})
	return ops
}

// Summary renders the provenance note appended as the last update.
func Summary(ticket *domain.SourceTicket, status domain.TargetStatus, sourceTicketURL string) string {
	return fmt.Sprintf(summaryTemplate,
		ticket.DisplayID,
		sourceTicketURL,
		formatTime(ticket.CreatedAt),
		formatTime(ticket.UpdatedAt),
		ticket.TicketType,
		ticket.SourceName,
		status,
	)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
