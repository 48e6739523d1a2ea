// Package zendesk creates tickets and appends comments through the Zendesk v2 API.
package zendesk

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/freshdesk-migrator/internal/client/rest"
	"github.com/spec-kit/freshdesk-migrator/internal/domain"
	"github.com/spec-kit/freshdesk-migrator/pkg/util/errorutil"
)

type ticketRequest struct {
	Ticket any `json:"ticket"`
}

type createdResponse struct {
	Ticket struct {
		ID          int64 `json:"id"`
		RequesterID int64 `json:"requester_id"`
	} `json:"ticket"`
}

type commentPayload struct {
	Public   bool   `json:"public"`
	Body     string `json:"body"`
	AuthorID *int64 `json:"author_id,omitempty"`
}

type updatePayload struct {
	Comment commentPayload       `json:"comment"`
	Status  *domain.TargetStatus `json:"status,omitempty"`
}

// Client implements the Target ticket writer.
type Client struct {
	rest   *rest.Client
	logger *zap.Logger
}

// NewClient builds a Client.
func NewClient(transport *rest.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{rest: transport, logger: logger}
}

// CreateTicket posts draft and returns the created ticket's id, location and
// the requester id Zendesk assigned.
func (c *Client) CreateTicket(ctx context.Context, draft *domain.TargetTicketDraft) (*domain.CreatedTicket, error) {
	resp, err := c.rest.Do(ctx, http.MethodPost, "/api/v2/tickets.json", ticketRequest{Ticket: draft})
	if err != nil {
		return nil, remoteWriteError("create ticket", err)
	}

	var created createdResponse
	if err := resp.Decode(&created); err != nil {
		return nil, errorutil.NewRemoteWriteError("create ticket", resp.StatusCode, "", err)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		location = fmt.Sprintf("%s/api/v2/tickets/%d.json", c.rest.BaseURL(), created.Ticket.ID)
	}
	c.logger.Info("ticket posted to zendesk",
		zap.Int("status", resp.StatusCode),
		zap.String("location", location))

	return &domain.CreatedTicket{
		ID:          created.Ticket.ID,
		Location:    location,
		RequesterID: created.Ticket.RequesterID,
	}, nil
}

// UpdateTicket appends op's comment to the ticket at location, applying op's
// status in the same request when set.
func (c *Client) UpdateTicket(ctx context.Context, location string, op domain.CommentOp) error {
	payload := updatePayload{
		Comment: commentPayload{
			Public:   op.Public,
			Body:     op.Body,
			AuthorID: op.AuthorID,
		},
		Status: op.Status,
	}
	resp, err := c.rest.Do(ctx, http.MethodPut, location, ticketRequest{Ticket: payload})
	if err != nil {
		return remoteWriteError("update ticket", err)
	}
	c.logger.Debug("ticket updated (comment added)", zap.Int("status", resp.StatusCode), zap.String("location", location))
	return nil
}

func remoteWriteError(operation string, err error) error {
	var statusErr *rest.StatusError
	if errors.As(err, &statusErr) {
		return errorutil.NewRemoteWriteError(operation, statusErr.StatusCode, statusErr.Body, err)
	}
	return errorutil.NewRemoteWriteError(operation, 0, "", err)
}
