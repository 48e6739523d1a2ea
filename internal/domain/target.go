package domain

import "time"

// TargetStatus enumerates Zendesk ticket statuses.
type TargetStatus string

const (
	TargetStatusNew     TargetStatus = "new"
	TargetStatusOpen    TargetStatus = "open"
	TargetStatusPending TargetStatus = "pending"
	TargetStatusHold    TargetStatus = "hold"
	TargetStatusSolved  TargetStatus = "solved"
	TargetStatusClosed  TargetStatus = "closed"
)

// TargetPriority enumerates Zendesk ticket priorities.
type TargetPriority string

const (
	TargetPriorityLow    TargetPriority = "low"
	TargetPriorityNormal TargetPriority = "normal"
	TargetPriorityHigh   TargetPriority = "high"
	TargetPriorityUrgent TargetPriority = "urgent"
)

// ImportTag marks every ticket created by the migrator.
const ImportTag = "freshdesk-import"

// Requester identifies the end-user a Target ticket is created for.
type Requester struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CustomFieldValue is one Target custom field assignment.
type CustomFieldValue struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// TargetTicketDraft is the not-yet-created Target ticket.
type TargetTicketDraft struct {
	Subject      string             `json:"subject"`
	Description  string             `json:"description"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	SolvedAt     *time.Time         `json:"solved_at,omitempty"`
	Requester    Requester          `json:"requester"`
	Tags         []string           `json:"tags"`
	Status       TargetStatus       `json:"status"`
	Priority     TargetPriority     `json:"priority"`
	CustomFields []CustomFieldValue `json:"custom_fields"`
	Type         string             `json:"type,omitempty"`
}

// HasTag reports whether the draft carries tag.
func (d *TargetTicketDraft) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CommentOp is one ordered update replayed onto a created Target ticket.
// Status is only set on the final op of a plan.
type CommentOp struct {
	Public   bool
	Body     string
	AuthorID *int64
	Status   *TargetStatus
}

// CreatedTicket describes a ticket Target accepted.
type CreatedTicket struct {
	ID          int64
	Location    string
	RequesterID int64
}
