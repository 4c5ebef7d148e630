// Package cache keeps recently read video records in Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"video-uploader/internal/entity"
)

const DefaultTTL = 5 * time.Minute

var tracer = otel.Tracer("video-uploader/cache")

// VideoStore is the metadata store being cached.
type VideoStore interface {
	List(ctx context.Context) ([]entity.Video, error)
	Get(ctx context.Context, id uint) (*entity.Video, error)
	Insert(ctx context.Context, v *entity.Video) error
	Delete(ctx context.Context, id uint) error
}

// Videos is a read-through cache for single-record lookups. Redis errors
// never fail a request; they are logged and the store answers instead.
type Videos struct {
	next   VideoStore
	client *redis.Client
	ttl    time.Duration
	logger echo.Logger
}

func NewVideos(next VideoStore, client *redis.Client, ttl time.Duration, logger echo.Logger) *Videos {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Videos{next: next, client: client, ttl: ttl, logger: logger}
}

// NewClient connects to Redis and checks the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

func videoKey(id uint) string {
	return fmt.Sprintf("video:%d", id)
}

func (c *Videos) List(ctx context.Context) ([]entity.Video, error) {
	return c.next.List(ctx)
}

func (c *Videos) Insert(ctx context.Context, v *entity.Video) error {
	return c.next.Insert(ctx, v)
}

func (c *Videos) Get(ctx context.Context, id uint) (*entity.Video, error) {
	ctx, span := tracer.Start(ctx, "cache.get_video",
		trace.WithAttributes(attribute.Int64("video_id", int64(id))),
	)
	defer span.End()

	data, err := c.client.Get(ctx, videoKey(id)).Bytes()
	switch {
	case err == nil:
		var cv cachedVideo
		if err := json.Unmarshal(data, &cv); err == nil {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return &entity.Video{ID: cv.ID, Filename: cv.Filename, URL: cv.URL, StorageKey: cv.StorageKey}, nil
		}
		c.logger.Warnf("discarding unreadable cache entry %s", videoKey(id))
	case err != redis.Nil:
		span.RecordError(err)
		c.logger.Warnf("cache read for video %d failed: %v", id, err)
	}
	span.SetAttributes(attribute.Bool("cache_hit", false))

	v, err := c.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, v)
	return v, nil
}

// Delete drops the cached copy on both sides of the store delete, so a Get
// that refilled the entry mid-delete does not outlive the record.
func (c *Videos) Delete(ctx context.Context, id uint) error {
	c.invalidate(ctx, id)
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *Videos) invalidate(ctx context.Context, id uint) {
	if err := c.client.Del(ctx, videoKey(id)).Err(); err != nil {
		c.logger.Warnf("cache invalidate for video %d failed: %v", id, err)
	}
}

// cached entries carry the storage key too, so they are encoded from a
// separate shape rather than the JSON the API returns.
type cachedVideo struct {
	ID         uint   `json:"id"`
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	StorageKey string `json:"storage_key"`
}

func (c *Videos) store(ctx context.Context, v *entity.Video) {
	data, err := json.Marshal(cachedVideo{ID: v.ID, Filename: v.Filename, URL: v.URL, StorageKey: v.StorageKey})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, videoKey(v.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warnf("cache write for video %d failed: %v", v.ID, err)
	}
}
