package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spec-kit/freshdesk-migrator/internal/domain"
	"github.com/spec-kit/freshdesk-migrator/internal/events"
	"github.com/spec-kit/freshdesk-migrator/pkg/util/errorutil"
)

type fakeReader struct {
	tickets map[int64]*domain.SourceTicket
	users   map[int64]*domain.SourceUser
	onGet   func(id int64)
	panicOn map[int64]bool
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		tickets: map[int64]*domain.SourceTicket{},
		users:   map[int64]*domain.SourceUser{},
		panicOn: map[int64]bool{},
	}
}

func (r *fakeReader) GetTicket(_ context.Context, id int64) (*domain.SourceTicket, error) {
	if r.onGet != nil {
		r.onGet(id)
	}
	if r.panicOn[id] {
		panic(fmt.Sprintf("decoder exploded on %d", id))
	}
	t, ok := r.tickets[id]
	if !ok {
		return nil, errorutil.NewTicketNotFound(id)
	}
	return t, nil
}

func (r *fakeReader) GetUser(_ context.Context, id int64) (*domain.SourceUser, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errorutil.NewUserNotFound(id)
	}
	return u, nil
}

type fakeLinker struct{}

func (fakeLinker) TicketURL(displayID int64) string {
	return fmt.Sprintf("http://acme.freshdesk.com/helpdesk/tickets/%d", displayID)
}

type recordedUpdate struct {
	Location string
	Op       domain.CommentOp
}

type fakeWriter struct {
	mu            sync.Mutex
	nextID        int64
	requesterID   int64
	drafts        []domain.TargetTicketDraft
	updates       []recordedUpdate
	failCreateFor map[string]bool
	// failUpdate holds per-ticket op indexes that fail, keyed by location.
	failUpdate map[string]map[int]bool
	seen       map[string]int
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{
		nextID:        900,
		requesterID:   4242,
		failCreateFor: map[string]bool{},
		failUpdate:    map[string]map[int]bool{},
		seen:          map[string]int{},
	}
}

func (w *fakeWriter) CreateTicket(_ context.Context, draft *domain.TargetTicketDraft) (*domain.CreatedTicket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failCreateFor[draft.Subject] {
		return nil, errorutil.NewRemoteWriteError("create ticket", 422, `{"error":"RecordInvalid"}`, nil)
	}
	w.drafts = append(w.drafts, *draft)
	w.nextID++
	return &domain.CreatedTicket{
		ID:          w.nextID,
		Location:    locationFor(w.nextID),
		RequesterID: w.requesterID,
	}, nil
}

func (w *fakeWriter) UpdateTicket(_ context.Context, location string, op domain.CommentOp) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := w.seen[location]
	w.seen[location] = idx + 1
	if w.failUpdate[location][idx] {
		return errorutil.NewRemoteWriteError("update ticket", 500, "", errors.New("boom"))
	}
	w.updates = append(w.updates, recordedUpdate{Location: location, Op: op})
	return nil
}

func locationFor(id int64) string {
	return fmt.Sprintf("https://acme.zendesk.com/api/v2/tickets/%d.json", id)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) Subscribe(events.EventType, events.EventHandler) {}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func makeTicket(id int64, status int) *domain.SourceTicket {
	created := time.Date(2015, 3, 1, 9, 0, 0, 0, time.UTC)
	return &domain.SourceTicket{
		ID:          id,
		DisplayID:   id,
		Subject:     fmt.Sprintf("ticket %d", id),
		Description: "description",
		CreatedAt:   created,
		UpdatedAt:   created.Add(72 * time.Hour),
		RequesterID: 10,
		Status:      status,
		Priority:    2,
		TicketType:  "Question",
		SourceName:  "Email",
		CustomField: map[string]any{"product_1": "Widget"},
	}
}
