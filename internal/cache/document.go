package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"labelhub/internal/model"
)

const documentTTL = time.Hour

func documentKey(id string) string {
	return "document:" + id
}

// DocumentCache is a read-through redis cache for document text.
// Documents are immutable once created, so the whole row is cached as
// json with a TTL. A nil *DocumentCache is valid and behaves as a
// cache that always misses, so callers need no redis in dev or tests.
type DocumentCache struct {
	client *redis.Client
}

func NewDocumentCache(addr string) *DocumentCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &DocumentCache{client: client}
}

// Get returns the cached document, or (nil, nil) on a miss.
func (c *DocumentCache) Get(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	if c == nil {
		return nil, nil
	}

	res := c.client.Get(ctx, documentKey(id.String()))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, nil
		}
		return nil, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, err
	}

	doc := &model.Document{}
	if err := json.Unmarshal(buf, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func (c *DocumentCache) Set(ctx context.Context, doc *model.Document) error {
	if c == nil {
		return nil
	}

	buf, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, documentKey(doc.ID.String()), buf, documentTTL).Err()
}

func (c *DocumentCache) Delete(ctx context.Context, id uuid.UUID) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, documentKey(id.String())).Err()
}
