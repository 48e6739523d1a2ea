package zendesk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/freshdesk-migrator/internal/client/rest"
	"github.com/spec-kit/freshdesk-migrator/internal/domain"
	"github.com/spec-kit/freshdesk-migrator/pkg/util/errorutil"
)

func newClient(url string) *Client {
	return NewClient(rest.New(rest.Options{BaseURL: url, InitialInterval: time.Millisecond}), nil)
}

func TestCreateTicket(t *testing.T) {
	var received map[string]map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/tickets.json", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Location", "https://zd.example/api/v2/tickets/901.json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ticket": {"id": 901, "requester_id": 4242}}`))
	}))
	defer srv.Close()

	solved := time.Date(2015, 3, 3, 8, 0, 0, 0, time.UTC)
	draft := &domain.TargetTicketDraft{
		Subject:      "Cannot log in",
		Requester:    domain.Requester{Name: "Jane", Email: "jane@example.com"},
		Tags:         []string{"bug", domain.ImportTag},
		Status:       domain.TargetStatusNew,
		Priority:     domain.TargetPriorityHigh,
		SolvedAt:     &solved,
		CustomFields: []domain.CustomFieldValue{{ID: "23732452", Value: "http://acme.freshdesk.com/helpdesk/tickets/77"}},
	}
	created, err := newClient(srv.URL).CreateTicket(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, int64(901), created.ID)
	assert.Equal(t, int64(4242), created.RequesterID)
	assert.Equal(t, "https://zd.example/api/v2/tickets/901.json", created.Location)

	ticket := received["ticket"]
	assert.Equal(t, "new", ticket["status"])
	assert.Equal(t, "high", ticket["priority"])
	assert.Equal(t, "2015-03-03T08:00:00Z", ticket["solved_at"])
	assert.Equal(t, []any{"bug", "freshdesk-import"}, ticket["tags"])
	assert.NotContains(t, ticket, "type")
}

func TestCreateTicketWithoutLocationFallsBackToTicketURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ticket": {"id": 12, "requester_id": 1}}`))
	}))
	defer srv.Close()

	created, err := newClient(srv.URL).CreateTicket(context.Background(), &domain.TargetTicketDraft{})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/api/v2/tickets/12.json", created.Location)
}

func TestCreateTicketFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"RecordInvalid"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).CreateTicket(context.Background(), &domain.TargetTicketDraft{})
	require.Error(t, err)
	assert.True(t, errorutil.IsRemoteWrite(err))
	de := errorutil.ToDomainError(err)
	assert.Equal(t, errorutil.CodeRemoteWriteFailed, de.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, de.Details["status"])
	assert.Contains(t, de.Details["body"], "RecordInvalid")
}

func TestUpdateTicketPayloads(t *testing.T) {
	var bodies []map[string]map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v2/tickets/901.json", r.URL.Path)
		var body map[string]map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newClient("http://unused.invalid")
	author := int64(4242)
	solved := domain.TargetStatusSolved
	location := srv.URL + "/api/v2/tickets/901.json"

	require.NoError(t, c.UpdateTicket(context.Background(), location, domain.CommentOp{Public: true, Body: "hi", AuthorID: &author}))
	require.NoError(t, c.UpdateTicket(context.Background(), location, domain.CommentOp{Public: false, Body: "summary", Status: &solved}))
	require.Len(t, bodies, 2)

	first := bodies[0]["ticket"]
	assert.NotContains(t, first, "status")
	assert.Equal(t, map[string]any{"public": true, "body": "hi", "author_id": float64(4242)}, first["comment"])

	second := bodies[1]["ticket"]
	assert.Equal(t, "solved", second["status"])
	assert.Equal(t, map[string]any{"public": false, "body": "summary"}, second["comment"])
}

func TestUpdateTicketFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := newClient(srv.URL).UpdateTicket(context.Background(), srv.URL+"/api/v2/tickets/1.json", domain.CommentOp{Body: "x"})
	require.Error(t, err)
	assert.True(t, errorutil.IsRemoteWrite(err))
}
