package audit

import (
	"time"

	"gorm.io/gorm"

	"sidesa/internal/models"
)

// Filter narrows the activity log read path. Zero values mean "no filter";
// EndDate is inclusive of the whole day it names.
type Filter struct {
	Action     string
	EntityType string
	UserID     string
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	default:
		return f.Limit
	}
}

// Query returns matching rows newest-first plus the unpaginated total.
func Query(db *gorm.DB, f Filter) ([]models.ActivityLog, int64, error) {
	q := db.Model(&models.ActivityLog{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.StartDate != nil {
		q = q.Where("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("created_at < ?", f.EndDate.AddDate(0, 0, 1))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ActivityLog
	err := q.Order("created_at desc").Limit(f.limit()).Offset(f.Offset).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
