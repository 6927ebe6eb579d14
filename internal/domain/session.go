package domain

import (
	"context"
	"time"
)

// SessionRow is the persisted state of a learner's attempt at a module: the
// backing repository name and the 1-based step cursor. At most one row exists
// per (user, module) pair; restarting a module replaces the row.
type SessionRow struct {
	UserID      int64
	ModuleID    int64
	Repo        string
	CurrentStep int
	CreatedAt   time.Time
}

// SessionRepository defines persistence operations for session rows.
type SessionRepository interface {
	Get(ctx context.Context, userID, moduleID int64) (*SessionRow, error)
	Create(ctx context.Context, session *SessionRow) error
	UpdateStep(ctx context.Context, userID, moduleID int64, step int) error
	Delete(ctx context.Context, userID, moduleID int64) error
}
