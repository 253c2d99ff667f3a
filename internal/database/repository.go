package database

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"idlerig/internal/models"
)

// Repository handles all database operations for the transition journal
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateTransition inserts a new transition into the journal
func (r *Repository) CreateTransition(tr *models.Transition) error {
	tr.Timestamp = tr.Timestamp.UTC()
	result := r.db.Create(tr)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert transition")
	}
	return nil
}

// GetLatestTransition retrieves the most recent transition, or nil if the journal is empty
func (r *Repository) GetLatestTransition() (*models.Transition, error) {
	var tr models.Transition
	result := r.db.Order("timestamp DESC, id DESC").First(&tr)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest transition")
	}
	return &tr, nil
}

// GetTransitionBefore retrieves the last transition strictly before t, or nil
func (r *Repository) GetTransitionBefore(t time.Time) (*models.Transition, error) {
	var tr models.Transition
	result := r.db.Where("timestamp < ?", t.UTC()).Order("timestamp DESC, id DESC").First(&tr)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get transition")
	}
	return &tr, nil
}

// GetTransitionsSince retrieves all transitions since a given time, oldest first
func (r *Repository) GetTransitionsSince(since time.Time) ([]*models.Transition, error) {
	var transitions []*models.Transition
	result := r.db.Where("timestamp >= ?", since.UTC()).Order("timestamp ASC, id ASC").Find(&transitions)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query transitions")
	}

	return transitions, nil
}

// GetRecentTransitions returns up to limit transitions, newest first
func (r *Repository) GetRecentTransitions(limit int) ([]*models.Transition, error) {
	var transitions []*models.Transition
	result := r.db.Order("timestamp DESC, id DESC").Limit(limit).Find(&transitions)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query transitions")
	}

	return transitions, nil
}

// DeleteOldTransitions deletes transitions older than a specified date (soft delete)
func (r *Repository) DeleteOldTransitions(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before.UTC()).Delete(&models.Transition{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old transitions")
	}
	return result.RowsAffected, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	errorLog.Timestamp = errorLog.Timestamp.UTC()
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// DeleteOldErrorLogs deletes error logs older than a specified date (soft delete)
func (r *Repository) DeleteOldErrorLogs(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before.UTC()).Delete(&models.ErrorLog{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old error logs")
	}
	return result.RowsAffected, nil
}

// GetLatestErrorLog retrieves the most recent error, or nil if there is none
func (r *Repository) GetLatestErrorLog() (*models.ErrorLog, error) {
	var errorLog models.ErrorLog
	result := r.db.Order("timestamp DESC, id DESC").First(&errorLog)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest error log")
	}
	return &errorLog, nil
}

// CountErrorsSince counts failed iterations since a given time
func (r *Repository) CountErrorsSince(since time.Time) (int64, error) {
	var count int64
	result := r.db.Model(&models.ErrorLog{}).Where("timestamp >= ?", since.UTC()).Count(&count)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to count error logs")
	}
	return count, nil
}

// Clear removes all transitions and error logs from the database
func (r *Repository) Clear() error {
	if result := r.db.Exec("DELETE FROM transitions"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear transitions")
	}
	if result := r.db.Exec("DELETE FROM error_logs"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear error logs")
	}
	return nil
}
