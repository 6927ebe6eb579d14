package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cs334f24/git-learner/internal/domain"
)

// SessionRepository implements domain.SessionRepository using SQLite. The
// (user_id, module_id) primary key enforces the one-active-session rule.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SQLite-backed SessionRepository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db.SqlDB}
}

func (r *SessionRepository) Get(ctx context.Context, userID, moduleID int64) (*domain.SessionRow, error) {
	s := &domain.SessionRow{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, module_id, repo, created, current_step
		 FROM sessions WHERE user_id = ? AND module_id = ?`, userID, moduleID,
	).Scan(&s.UserID, &s.ModuleID, &s.Repo, &s.CreatedAt, &s.CurrentStep)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	return s, nil
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.SessionRow) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, module_id, repo, created, current_step)
		 VALUES (?, ?, ?, ?, ?)`,
		session.UserID, session.ModuleID, session.Repo, now, session.CurrentStep,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	session.CreatedAt = now
	return nil
}

func (r *SessionRepository) UpdateStep(ctx context.Context, userID, moduleID int64, step int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET current_step = ? WHERE user_id = ? AND module_id = ?`,
		step, userID, moduleID,
	)
	if err != nil {
		return fmt.Errorf("update session step: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, userID, moduleID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = ? AND module_id = ?`, userID, moduleID,
	)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
