// Package freshdesk reads tickets and contacts from the Freshdesk v1 API.
package freshdesk

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/freshdesk-migrator/internal/client/rest"
	"github.com/spec-kit/freshdesk-migrator/internal/domain"
	"github.com/spec-kit/freshdesk-migrator/pkg/util/errorutil"
)

// Client implements the Source ticket reader and permalink builder.
type Client struct {
	rest    *rest.Client
	company string
	logger  *zap.Logger
}

// NewClient builds a Client. company is the Freshdesk account subdomain used
// for permalinks; it may be empty when the base URL is overridden.
func NewClient(transport *rest.Client, company string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{rest: transport, company: company, logger: logger}
}

// GetTicket fetches a ticket with its notes.
func (c *Client) GetTicket(ctx context.Context, id int64) (*domain.SourceTicket, error) {
	resp, err := c.rest.Do(ctx, http.MethodGet, fmt.Sprintf("/helpdesk/tickets/%d.json", id), nil)
	if err != nil {
		if rest.IsStatus(err, http.StatusNotFound) {
			return nil, errorutil.NewTicketNotFound(id)
		}
		return nil, fmt.Errorf("fetch freshdesk ticket %d: %w", id, err)
	}

	var envelope ticketEnvelope
	if err := resp.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("fetch freshdesk ticket %d: %w", id, err)
	}
	if envelope.Ticket == nil {
		c.logger.Error("cannot fetch freshdesk ticket", zap.Int64("ticket_id", id), zap.ByteString("response", resp.Body))
		return nil, errorutil.NewTicketNotFound(id)
	}
	c.logger.Info("fetched freshdesk ticket", zap.Int64("ticket_id", id))
	return envelope.Ticket.toDomain(), nil
}

// GetUser fetches a contact.
func (c *Client) GetUser(ctx context.Context, id int64) (*domain.SourceUser, error) {
	resp, err := c.rest.Do(ctx, http.MethodGet, fmt.Sprintf("/contacts/%d.json", id), nil)
	if err != nil {
		if rest.IsStatus(err, http.StatusNotFound) {
			return nil, errorutil.NewUserNotFound(id)
		}
		return nil, fmt.Errorf("fetch freshdesk user %d: %w", id, err)
	}

	var envelope userEnvelope
	if err := resp.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("fetch freshdesk user %d: %w", id, err)
	}
	if envelope.User == nil {
		c.logger.Error("cannot fetch freshdesk user", zap.Int64("user_id", id), zap.ByteString("response", resp.Body))
		return nil, errorutil.NewUserNotFound(id)
	}
	c.logger.Info("fetched freshdesk user", zap.Int64("user_id", id))
	return &domain.SourceUser{
		ID:    int64(envelope.User.ID),
		Name:  envelope.User.Name,
		Email: envelope.User.Email,
	}, nil
}

// TicketURL returns the agent-facing permalink of a ticket.
func (c *Client) TicketURL(displayID int64) string {
	if c.company != "" {
		return fmt.Sprintf("http://%s.freshdesk.com/helpdesk/tickets/%d", c.company, displayID)
	}
	return fmt.Sprintf("%s/helpdesk/tickets/%d", strings.TrimRight(c.rest.BaseURL(), "/"), displayID)
}

func (p *ticketPayload) toDomain() *domain.SourceTicket {
	ticket := &domain.SourceTicket{
		ID:          int64(p.ID),
		DisplayID:   int64(p.DisplayID),
		Subject:     p.Subject,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		RequesterID: int64(p.RequesterID),
		Status:      int(p.Status),
		Priority:    int(p.Priority),
		SourceName:  p.SourceName,
		CustomField: p.CustomField,
		Notes:       make([]domain.Note, 0, len(p.Notes)),
	}
	if p.TicketType != nil {
		ticket.TicketType = *p.TicketType
	}
	if ticket.CustomField == nil {
		ticket.CustomField = map[string]any{}
	}
	for _, w := range p.Notes {
		ticket.Notes = append(ticket.Notes, domain.Note{
			UserID:  int64(w.Note.UserID),
			Private: w.Note.Private,
			Body:    w.Note.Body,
		})
	}
	return ticket
}
