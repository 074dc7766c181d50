package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trentd187/f1-fansite/internal/models"
)

// MaxRecent caps how many rows Recent returns in one call.
const MaxRecent = 100

// UpdateLog records dataset uploads and lists the most recent ones.
type UpdateLog interface {
	// Record stores u, filling in ID and CreatedAt when they're zero.
	Record(ctx context.Context, u *models.DataUpdate) error
	// Recent returns up to limit updates, newest first. limit is clamped to [1, MaxRecent].
	Recent(ctx context.Context, limit int) ([]models.DataUpdate, error)
}

var (
	_ UpdateLog = (*GormUpdateLog)(nil)
	_ UpdateLog = (*MemoryUpdateLog)(nil)
)

// GormUpdateLog is the Postgres-backed UpdateLog.
type GormUpdateLog struct {
	db *gorm.DB
}

// NewGormUpdateLog wraps an open GORM handle. The data_updates table must
// already exist (see migrations/000001_data_updates.up.sql).
func NewGormUpdateLog(db *gorm.DB) *GormUpdateLog {
	return &GormUpdateLog{db: db}
}

// Record inserts one row.
func (l *GormUpdateLog) Record(ctx context.Context, u *models.DataUpdate) error {
	prepare(u, time.Now())
	return l.db.WithContext(ctx).Create(u).Error
}

// Recent selects the newest rows.
func (l *GormUpdateLog) Recent(ctx context.Context, limit int) ([]models.DataUpdate, error) {
	var updates []models.DataUpdate
	err := l.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(clampLimit(limit)).
		Find(&updates).Error
	if err != nil {
		return nil, err
	}
	return updates, nil
}

// prepare fills the generated fields of u.
func prepare(u *models.DataUpdate, now time.Time) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now.UTC()
	}
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxRecent {
		return MaxRecent
	}
	return limit
}
