package reporter

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gotest.tools/assert"

	"idlerig/internal/database"
	"idlerig/internal/models"
)

func at(day, hour int) time.Time {
	return time.Date(2026, 3, day, hour, 0, 0, 0, time.UTC)
}

func newTestReporter(t *testing.T, now time.Time, transitions ...*models.Transition) *Reporter {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "journal.db"))
	assert.NilError(t, err)
	assert.NilError(t, db.Initialize())
	t.Cleanup(func() { db.Close() })

	repo := database.NewRepository(db)
	for _, tr := range transitions {
		assert.NilError(t, repo.CreateTransition(tr))
	}

	r := New(repo)
	r.now = func() time.Time { return now }
	return r
}

func tr(session string, ts time.Time, from, to string) *models.Transition {
	command := "pause"
	if to == "RUNNING" {
		command = "resume"
	}
	return &models.Transition{SessionID: session, Timestamp: ts, FromState: from, ToState: to, Command: command}
}

func TestGenerateReportDay(t *testing.T) {
	r := newTestReporter(t, at(4, 12),
		tr("s1", at(3, 22), "UNKNOWN", "PAUSED"),
		tr("s1", at(4, 8), "PAUSED", "RUNNING"),
		tr("s1", at(4, 9), "RUNNING", "PAUSED"),
		// watchdog restarted, 09:00-10:00 is unaccounted
		tr("s2", at(4, 10), "UNKNOWN", "RUNNING"),
	)

	report, err := r.GenerateReport("day")
	assert.NilError(t, err)

	assert.Assert(t, report.Period.Start.Equal(at(4, 0)))
	assert.Assert(t, report.Period.End.Equal(at(5, 0)))
	assert.Equal(t, report.Transitions, 3)
	assert.Equal(t, report.TotalSeconds, int64(11*3600))
	assert.DeepEqual(t, []string{report.States[0].State, report.States[1].State}, []string{"RUNNING", "PAUSED"})
	assert.Equal(t, report.States[0].TotalSeconds, int64(3*3600))
	assert.Equal(t, report.States[1].TotalSeconds, int64(8*3600))
}

func TestGenerateReportEmpty(t *testing.T) {
	r := newTestReporter(t, at(4, 12))

	report, err := r.GenerateReport("week")
	assert.NilError(t, err)
	assert.Equal(t, len(report.States), 0)
	assert.Equal(t, report.TotalSeconds, int64(0))
	assert.Assert(t, strings.Contains(FormatReportText(report), "No miner activity"))
}

func TestGenerateReportInvalidPeriod(t *testing.T) {
	r := newTestReporter(t, at(4, 12))
	_, err := r.GenerateReport("year")
	assert.ErrorContains(t, err, "invalid period type")
}

func TestPeriodBounds(t *testing.T) {
	// 2026-03-04 is a Wednesday
	now := at(4, 15)

	week, err := GetPeriod("week", now)
	assert.NilError(t, err)
	assert.Assert(t, week.Start.Equal(at(2, 0)))
	assert.Assert(t, week.End.Equal(at(9, 0)))

	month, err := GetPeriod("month", now)
	assert.NilError(t, err)
	assert.Assert(t, month.Start.Equal(at(1, 0)))
	assert.Equal(t, month.End.Month(), time.April)
}

func TestFormatReport(t *testing.T) {
	r := newTestReporter(t, at(4, 12),
		tr("s1", at(4, 6), "UNKNOWN", "RUNNING"),
	)
	report, err := r.GenerateReport("day")
	assert.NilError(t, err)

	text := FormatReportText(report)
	assert.Assert(t, strings.Contains(text, "RUNNING"))
	assert.Assert(t, strings.Contains(text, "100.0%"))

	out, err := FormatReportJSON(report)
	assert.NilError(t, err)
	var decoded models.Report
	assert.NilError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, decoded.States[0].TotalSeconds, int64(6*3600))
}
