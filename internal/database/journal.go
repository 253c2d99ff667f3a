package database

import (
	"time"

	"github.com/google/uuid"

	"idlerig/internal/models"
)

// Journal records watchdog activity for one process lifetime. Every row it
// writes carries the same session ID.
type Journal struct {
	repo      *Repository
	sessionID string
	now       func() time.Time
}

func NewJournal(repo *Repository) *Journal {
	return &Journal{
		repo:      repo,
		sessionID: uuid.NewString(),
		now:       time.Now,
	}
}

func (j *Journal) SessionID() string {
	return j.sessionID
}

func (j *Journal) RecordTransition(from, to string, idle time.Duration, command string) error {
	return j.repo.CreateTransition(&models.Transition{
		SessionID: j.sessionID,
		Timestamp: j.now(),
		FromState: from,
		ToState:   to,
		Command:   command,
		IdleMs:    idle.Milliseconds(),
	})
}

func (j *Journal) RecordError(kind string, err error) error {
	return j.repo.CreateErrorLog(&models.ErrorLog{
		SessionID: j.sessionID,
		Timestamp: j.now(),
		Kind:      kind,
		ErrorMsg:  err.Error(),
	})
}
