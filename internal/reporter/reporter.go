package reporter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"idlerig/internal/database"
	"idlerig/internal/models"
	"idlerig/pkg/utils"
)

const unknownState = "UNKNOWN"

// Reporter turns the transition journal into per-state time totals
type Reporter struct {
	repo *database.Repository
	now  func() time.Time
}

// New creates a new reporter
func New(repo *database.Repository) *Reporter {
	return &Reporter{
		repo: repo,
		now:  time.Now,
	}
}

// GenerateReport generates a report for the specified period. Time between a
// transition and the next one is charged to the state it entered. The gap
// before a new session's first transition is not charged, since the
// watchdog was not running. The open segment after the last transition is
// charged up to now.
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	now := r.now()
	period, err := GetPeriod(periodType, now)
	if err != nil {
		return nil, err
	}

	prev, err := r.repo.GetTransitionBefore(period.Start)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get state at period start")
	}

	transitions, err := r.repo.GetTransitionsSince(period.Start)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transitions")
	}

	errCount, err := r.repo.CountErrorsSince(period.Start)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count errors")
	}

	stop := period.End
	if now.Before(stop) {
		stop = now
	}

	totals := map[string]time.Duration{}
	state, cursor := unknownState, period.Start
	if prev != nil {
		state = prev.ToState
	}

	inPeriod := 0
	for _, tr := range transitions {
		if !tr.Timestamp.Before(stop) {
			break
		}
		if tr.FromState != unknownState || prev == nil || prev.SessionID == tr.SessionID {
			totals[state] += tr.Timestamp.Sub(cursor)
		}
		state, cursor, prev = tr.ToState, tr.Timestamp, tr
		inPeriod++
	}
	if stop.After(cursor) {
		totals[state] += stop.Sub(cursor)
	}
	delete(totals, unknownState)

	summaries := make([]models.StateSummary, 0, 2)
	var totalSeconds int64
	for _, name := range []string{"RUNNING", "PAUSED"} {
		secs := int64(totals[name].Seconds())
		if secs == 0 {
			continue
		}
		summaries = append(summaries, models.StateSummary{
			State:        name,
			TotalSeconds: secs,
			TotalMinutes: float64(secs) / 60.0,
			TotalHours:   float64(secs) / 3600.0,
		})
		totalSeconds += secs
	}

	if totalSeconds > 0 {
		for i := range summaries {
			summaries[i].Percentage = (float64(summaries[i].TotalSeconds) / float64(totalSeconds)) * 100.0
		}
	}

	return &models.Report{
		Period:       *period,
		States:       summaries,
		Transitions:  inPeriod,
		Errors:       errCount,
		TotalSeconds: totalSeconds,
		GeneratedAt:  now,
	}, nil
}

// GetPeriod calculates the time range for the report
func GetPeriod(periodType string, now time.Time) (*models.ReportPeriod, error) {
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 0, 1)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, errors.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func FormatReportText(report *models.Report) string {
	output := fmt.Sprintf("Miner Report - %s\n", report.Period.Type)
	output += fmt.Sprintf("Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	output += fmt.Sprintf("Tracked Time: %s, %d transitions, %d errors\n\n",
		utils.FormatRoundedUnit(report.TotalSeconds), report.Transitions, report.Errors)

	if len(report.States) == 0 {
		output += "No miner activity recorded for this period.\n"
		return output
	}

	output += fmt.Sprintf("%-10s %10s %10s %10s\n", "State", "Hours", "Time", "Percent")
	output += "---------------------------------------------\n"

	for _, s := range report.States {
		output += fmt.Sprintf("%-10s %10.2f %10s %9.1f%%\n",
			s.State,
			s.TotalHours,
			utils.FormatRoundedUnit(s.TotalSeconds),
			s.Percentage)
	}

	return output
}

// FormatReportJSON formats the report as JSON
func FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal JSON")
	}
	return string(data), nil
}
