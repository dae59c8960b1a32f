package repository

import (
	"context"
	"time"

	"mentorhub/internal/domain"

	"gorm.io/gorm"
)

type AvailabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

type availabilityWindowModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	MentorID  int64     `gorm:"column:mentor_id;index:idx_availability_mentor_day"`
	DayOfWeek int       `gorm:"column:day_of_week;index:idx_availability_mentor_day"`
	StartTime string    `gorm:"column:start_time"`
	EndTime   string    `gorm:"column:end_time"`
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (availabilityWindowModel) TableName() string { return "availability_windows" }

func toDomainWindow(m availabilityWindowModel) domain.AvailabilityWindow {
	return domain.AvailabilityWindow{
		ID:        m.ID,
		MentorID:  m.MentorID,
		DayOfWeek: m.DayOfWeek,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toWindowModel(w domain.AvailabilityWindow) availabilityWindowModel {
	return availabilityWindowModel{
		ID:        w.ID,
		MentorID:  w.MentorID,
		DayOfWeek: w.DayOfWeek,
		StartTime: w.StartTime,
		EndTime:   w.EndTime,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// ReplaceForMentor swaps the mentor's whole window set in one transaction.
// A concurrent reader sees either the old set or the new one, never a mix.
func (r *AvailabilityRepository) ReplaceForMentor(ctx context.Context, mentorID int64, windows []domain.AvailabilityWindow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mentor_id = ?", mentorID).Delete(&availabilityWindowModel{}).Error; err != nil {
			return err
		}
		if len(windows) == 0 {
			return nil
		}

		rows := make([]availabilityWindowModel, 0, len(windows))
		for _, w := range windows {
			m := toWindowModel(w)
			m.ID = 0
			m.MentorID = mentorID
			rows = append(rows, m)
		}
		return tx.Create(&rows).Error
	})
}

func (r *AvailabilityRepository) ListByMentor(ctx context.Context, mentorID int64) ([]domain.AvailabilityWindow, error) {
	var rows []availabilityWindowModel
	tx := r.db.WithContext(ctx).
		Where("mentor_id = ?", mentorID).
		Order("day_of_week ASC, start_time ASC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.AvailabilityWindow, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainWindow(m))
	}
	return out, nil
}

func (r *AvailabilityRepository) ListActiveForDay(ctx context.Context, mentorID int64, dayOfWeek int) ([]domain.AvailabilityWindow, error) {
	var rows []availabilityWindowModel
	tx := r.db.WithContext(ctx).
		Where("mentor_id = ? AND day_of_week = ? AND is_active = ?", mentorID, dayOfWeek, true).
		Order("start_time ASC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.AvailabilityWindow, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainWindow(m))
	}
	return out, nil
}
