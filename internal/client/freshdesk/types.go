package freshdesk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// flexInt accepts both JSON numbers and numeric strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %q as integer: %w", s, err)
		}
		*f = flexInt(n)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	i, err := n.Int64()
	if err != nil {
		return fmt.Errorf("parse %s as integer: %w", n, err)
	}
	*f = flexInt(i)
	return nil
}

type ticketEnvelope struct {
	Ticket *ticketPayload `json:"helpdesk_ticket"`
}

type ticketPayload struct {
	ID          flexInt        `json:"id"`
	DisplayID   flexInt        `json:"display_id"`
	Subject     string         `json:"subject"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	RequesterID flexInt        `json:"requester_id"`
	Status      flexInt        `json:"status"`
	Priority    flexInt        `json:"priority"`
	TicketType  *string        `json:"ticket_type"`
	SourceName  string         `json:"source_name"`
	CustomField map[string]any `json:"custom_field"`
	Notes       []noteWrapper  `json:"notes"`
}

type noteWrapper struct {
	Note notePayload `json:"note"`
}

type notePayload struct {
	UserID  flexInt `json:"user_id"`
	Private bool    `json:"private"`
	Body    string  `json:"body"`
}

type userEnvelope struct {
	User *userPayload `json:"user"`
}

type userPayload struct {
	ID    flexInt `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
}
