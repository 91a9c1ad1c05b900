package storage

import (
	"time"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
	apperrors "github.com/kurihiro0119/commit-cadence/internal/errors"
)

// WindowBounds returns the first and last day of a days-long window ending at today
func WindowBounds(days int, today time.Time) (start, end string) {
	endDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	startDay := endDay.AddDate(0, 0, -(days - 1))
	return startDay.Format(domain.DayLayout), endDay.Format(domain.DayLayout)
}

// FillWindow expands sparse rows into one record per day of the window ending
// at today. Rows outside the window are dropped.
func FillWindow(rows []domain.DailyCommitRecord, days int, today time.Time) []domain.DailyCommitRecord {
	if days <= 0 {
		return []domain.DailyCommitRecord{}
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Day] += r.Commits
	}

	start, _ := WindowBounds(days, today)
	day, _ := time.Parse(domain.DayLayout, start)

	dense := make([]domain.DailyCommitRecord, days)
	for i := range dense {
		key := day.AddDate(0, 0, i).Format(domain.DayLayout)
		dense[i] = domain.DailyCommitRecord{Day: key, Commits: counts[key]}
	}
	return dense
}

// CheckRecords rejects rows that cannot be stored
func CheckRecords(records []domain.DailyCommitRecord) error {
	for _, r := range records {
		if _, err := time.Parse(domain.DayLayout, r.Day); err != nil {
			return apperrors.NewInvalidInputError("day %q is not a YYYY-MM-DD date", r.Day)
		}
		if r.Commits < 0 {
			return apperrors.NewInvalidInputError("negative commit count %d on %s", r.Commits, r.Day)
		}
	}
	return nil
}
