// Package repository is the metadata store for uploaded videos.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"video-uploader/internal/entity"
)

var ErrNotFound = errors.New("video not found")

// Videos reads and writes video records. Every call runs as its own
// statement on a connection taken from the pool for that call only.
type Videos struct {
	db *gorm.DB
}

func NewVideos(db *gorm.DB) *Videos {
	return &Videos{db: db}
}

func (r *Videos) List(ctx context.Context) ([]entity.Video, error) {
	videos := []entity.Video{}
	if err := r.db.WithContext(ctx).Order("id").Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}

func (r *Videos) Get(ctx context.Context, id uint) (*entity.Video, error) {
	var video entity.Video
	if err := r.db.WithContext(ctx).First(&video, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get video %d: %w", id, err)
	}
	return &video, nil
}

// Insert stores v and sets v.ID to the assigned identifier.
func (r *Videos) Insert(ctx context.Context, v *entity.Video) error {
	v.ID = 0
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (r *Videos) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Video{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete video %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping reports whether the underlying database is reachable.
func (r *Videos) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
