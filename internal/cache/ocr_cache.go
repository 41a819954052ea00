package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/appointment-parser/internal/domain"
)

// OCRCache memoizes OCR results keyed by image content. Identical uploads
// skip the vision call. Any cache failure degrades to a miss; the cache
// must never fail a pipeline run.
type OCRCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewOCRCache builds the cache. A nil client disables caching.
func NewOCRCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *OCRCache {
	return &OCRCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached result for the image, if present.
func (c *OCRCache) Get(ctx context.Context, image []byte) (domain.RawTextResult, bool) {
	if c == nil || c.client == nil {
		return domain.RawTextResult{}, false
	}
	data, err := c.client.Get(ctx, Key(image)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("ocr cache read failed", zap.Error(err))
		}
		return domain.RawTextResult{}, false
	}
	var result domain.RawTextResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("ocr cache entry corrupt", zap.Error(err))
		return domain.RawTextResult{}, false
	}
	return result, true
}

// Set stores an OCR result for the image.
func (c *OCRCache) Set(ctx context.Context, image []byte, result domain.RawTextResult) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, Key(image), data, c.ttl).Err(); err != nil {
		c.logger.Warn("ocr cache write failed", zap.Error(err))
	}
}

// Key derives the cache key from the image bytes.
func Key(image []byte) string {
	sum := sha256.Sum256(image)
	return "ocr:" + hex.EncodeToString(sum[:])
}
