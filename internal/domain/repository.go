package domain

import "time"

// Repository represents a tracked GitHub repository
type Repository struct {
	ID           int64      `json:"id" db:"id"`
	Owner        string     `json:"owner" db:"owner"`
	Name         string     `json:"name" db:"name"`
	DisplayName  *string    `json:"displayName" db:"display_name"`
	LastSyncAt   *time.Time `json:"lastSyncAt" db:"last_sync_at"`
	LastPushedAt *time.Time `json:"lastPushedAt" db:"last_pushed_at"`
	NetLoc       int64      `json:"netLoc" db:"net_loc"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}

// FullName returns "owner/name"
func (r *Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// RepoRef is the minimal repository identity returned alongside raw daily data
type RepoRef struct {
	ID    int64  `json:"id"`
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// Ref returns the repository's identity fields
func (r *Repository) Ref() RepoRef {
	return RepoRef{ID: r.ID, Owner: r.Owner, Name: r.Name}
}
