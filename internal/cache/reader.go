package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/freshdesk-migrator/internal/domain"
	"github.com/spec-kit/freshdesk-migrator/internal/service"
)

// CachingReader serves tickets and users from Store, falling back to the
// wrapped reader and caching what it returns. Not-found results are never
// cached.
type CachingReader struct {
	next   service.SourceTicketReader
	store  Store
	logger *zap.Logger
}

var _ service.SourceTicketReader = (*CachingReader)(nil)

// NewCachingReader decorates next with store.
func NewCachingReader(next service.SourceTicketReader, store Store, logger *zap.Logger) *CachingReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingReader{next: next, store: store, logger: logger}
}

func ticketKey(id int64) string { return fmt.Sprintf("ticket_%d", id) }
func userKey(id int64) string   { return fmt.Sprintf("user_%d", id) }

func (c *CachingReader) GetTicket(ctx context.Context, id int64) (*domain.SourceTicket, error) {
	key := ticketKey(id)
	var ticket domain.SourceTicket
	if c.lookup(ctx, key, &ticket) {
		c.logger.Debug("ticket retrieved from cache", zap.Int64("ticket_id", id))
		return &ticket, nil
	}

	fetched, err := c.next.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, fetched)
	return fetched, nil
}

func (c *CachingReader) GetUser(ctx context.Context, id int64) (*domain.SourceUser, error) {
	key := userKey(id)
	var user domain.SourceUser
	if c.lookup(ctx, key, &user) {
		c.logger.Debug("user retrieved from cache", zap.Int64("user_id", id))
		return &user, nil
	}

	fetched, err := c.next.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, fetched)
	return fetched, nil
}

// lookup treats store errors and undecodable entries as misses.
func (c *CachingReader) lookup(ctx context.Context, key string, out any) bool {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachingReader) save(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
