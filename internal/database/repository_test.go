package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/assert"

	"idlerig/internal/models"
)

func openTestDB(t *testing.T) *Repository {
	t.Helper()
	db, err := Connect(filepath.Join(t.TempDir(), "nested", "journal.db"))
	assert.NilError(t, err)
	assert.NilError(t, db.Initialize())
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func TestLatestTransitionEmpty(t *testing.T) {
	repo := openTestDB(t)

	tr, err := repo.GetLatestTransition()
	assert.NilError(t, err)
	assert.Assert(t, tr == nil)
}

func TestTransitionQueries(t *testing.T) {
	repo := openTestDB(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, to := range []string{"PAUSED", "RUNNING", "PAUSED"} {
		assert.NilError(t, repo.CreateTransition(&models.Transition{
			SessionID: "s1",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			FromState: "UNKNOWN",
			ToState:   to,
			Command:   "pause",
		}))
	}

	latest, err := repo.GetLatestTransition()
	assert.NilError(t, err)
	assert.Equal(t, latest.ToState, "PAUSED")
	assert.Assert(t, latest.Timestamp.Equal(base.Add(2*time.Hour)))

	since, err := repo.GetTransitionsSince(base.Add(30 * time.Minute))
	assert.NilError(t, err)
	assert.Equal(t, len(since), 2)
	assert.Equal(t, since[0].ToState, "RUNNING")

	before, err := repo.GetTransitionBefore(base.Add(90 * time.Minute))
	assert.NilError(t, err)
	assert.Equal(t, before.ToState, "RUNNING")

	recent, err := repo.GetRecentTransitions(2)
	assert.NilError(t, err)
	assert.Equal(t, len(recent), 2)
	assert.Assert(t, recent[0].Timestamp.After(recent[1].Timestamp))

	deleted, err := repo.DeleteOldTransitions(base.Add(time.Hour))
	assert.NilError(t, err)
	assert.Equal(t, deleted, int64(1))
}

func TestJournalRecords(t *testing.T) {
	repo := openTestDB(t)
	j := NewJournal(repo)
	assert.Assert(t, j.SessionID() != "")

	assert.NilError(t, j.RecordTransition("UNKNOWN", "PAUSED", 1500*time.Millisecond, "pause"))
	assert.NilError(t, j.RecordError("rpc", errors.New("connection refused")))

	tr, err := repo.GetLatestTransition()
	assert.NilError(t, err)
	assert.Equal(t, tr.SessionID, j.SessionID())
	assert.Equal(t, tr.IdleMs, int64(1500))
	assert.Equal(t, tr.Command, "pause")

	errLog, err := repo.GetLatestErrorLog()
	assert.NilError(t, err)
	assert.Equal(t, errLog.Kind, "rpc")
	assert.Equal(t, errLog.ErrorMsg, "connection refused")

	count, err := repo.CountErrorsSince(time.Now().Add(-time.Hour))
	assert.NilError(t, err)
	assert.Equal(t, count, int64(1))
}

func TestClear(t *testing.T) {
	repo := openTestDB(t)
	j := NewJournal(repo)
	assert.NilError(t, j.RecordTransition("UNKNOWN", "RUNNING", 0, "resume"))
	assert.NilError(t, j.RecordError("idle", errors.New("no display")))

	assert.NilError(t, repo.Clear())

	tr, err := repo.GetLatestTransition()
	assert.NilError(t, err)
	assert.Assert(t, tr == nil)

	errLog, err := repo.GetLatestErrorLog()
	assert.NilError(t, err)
	assert.Assert(t, errLog == nil)
}
