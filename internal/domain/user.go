package domain

import (
	"context"
	"time"
)

// User is a learner identified by their GitHub login. Name and email come
// from the GitHub profile at login time and may be empty.
type User struct {
	ID          int64
	Name        string
	Email       string
	GithubLogin string
	CreatedAt   time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Upsert inserts the user or, if the GitHub login is already known,
	// refreshes name and email. The ID is populated either way.
	Upsert(ctx context.Context, user *User) error
	GetByLogin(ctx context.Context, githubLogin string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}
