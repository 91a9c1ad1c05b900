package domain

import "time"

// Snapshot is a raw export of every repository's stored daily rows
type Snapshot struct {
	GeneratedAt time.Time      `json:"generatedAt"`
	Repos       []SnapshotRepo `json:"repos"`
}

// SnapshotRepo is one repository inside a Snapshot
type SnapshotRepo struct {
	ID         int64               `json:"id"`
	Owner      string              `json:"owner"`
	Name       string              `json:"name"`
	LastSyncAt *time.Time          `json:"lastSyncAt"`
	Daily      []DailyCommitRecord `json:"daily"`
}

// DailyEntries returns the total number of daily rows in the snapshot
func (s *Snapshot) DailyEntries() int {
	total := 0
	for _, r := range s.Repos {
		total += len(r.Daily)
	}
	return total
}
