package domain

import "time"

// SourceTicket is a Freshdesk ticket as read from the Source system.
type SourceTicket struct {
	ID          int64
	DisplayID   int64
	Subject     string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RequesterID int64
	Status      int
	Priority    int
	TicketType  string
	SourceName  string
	CustomField map[string]any
	Notes       []Note
}

// Note is one entry of a ticket's conversation, in Source order.
type Note struct {
	UserID  int64
	Private bool
	Body    string
}

// SourceUser is the Freshdesk contact that requested a ticket.
type SourceUser struct {
	ID    int64
	Name  string
	Email string
}
