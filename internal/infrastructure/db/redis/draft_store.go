package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

const defaultDraftTTL = 2 * time.Hour

// DraftStore keeps booking wizard drafts as JSON under wizard:<id>. Every
// save restarts the expiry.
type DraftStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewDraftStore(client redis.Cmdable, ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	return &DraftStore{client: client, ttl: ttl}
}

func (s *DraftStore) Save(ctx context.Context, w *domain.Wizard) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode wizard: %w", err)
	}
	return s.client.Set(ctx, draftKey(w.ID), raw, s.ttl).Err()
}

func (s *DraftStore) Get(ctx context.Context, id string) (*domain.Wizard, error) {
	raw, err := s.client.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrWizardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load wizard: %w", err)
	}
	var w domain.Wizard
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode wizard: %w", err)
	}
	return &w, nil
}

func draftKey(id string) string {
	return "wizard:" + id
}
