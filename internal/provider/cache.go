package provider

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const metadataCacheTTL = 24 * time.Hour

// metadataCache keeps resolved video metadata in Redis. A nil client
// disables caching.
type metadataCache struct {
	rdb *redis.Client
}

func newMetadataCache(rdb *redis.Client) *metadataCache {
	return &metadataCache{rdb: rdb}
}

func cacheKey(videoID string) string {
	return "yt:video:" + videoID
}

func (c *metadataCache) get(ctx context.Context, videoID string) (VideoMetadata, bool) {
	if c.rdb == nil {
		return VideoMetadata{}, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(videoID)).Bytes()
	if err != nil {
		return VideoMetadata{}, false
	}
	var meta VideoMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return VideoMetadata{}, false
	}
	return meta, true
}

func (c *metadataCache) set(ctx context.Context, meta VideoMetadata) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(meta.VideoID), raw, metadataCacheTTL).Err(); err != nil {
		log.Printf("jukebox-service: cache video metadata: %v", err)
	}
}
