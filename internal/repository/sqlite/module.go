package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cs334f24/git-learner/internal/domain"
)

// ModuleRepository implements domain.ModuleRepository using SQLite.
type ModuleRepository struct {
	db *sql.DB
}

// NewModuleRepository creates a new SQLite-backed ModuleRepository.
func NewModuleRepository(db *DB) *ModuleRepository {
	return &ModuleRepository{db: db.SqlDB}
}

func (r *ModuleRepository) Upsert(ctx context.Context, module *domain.ModuleRow) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO modules (name, base_repo, total_steps)
		 VALUES (?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET base_repo = excluded.base_repo, total_steps = excluded.total_steps
		 RETURNING id`,
		module.Name, module.BaseRepo, module.TotalSteps,
	).Scan(&module.ID)
	if err != nil {
		return fmt.Errorf("upsert module: %w", err)
	}
	return nil
}

func (r *ModuleRepository) GetByName(ctx context.Context, name string) (*domain.ModuleRow, error) {
	module := &domain.ModuleRow{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, base_repo, total_steps FROM modules WHERE name = ?`, name,
	).Scan(&module.ID, &module.Name, &module.BaseRepo, &module.TotalSteps)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrModuleNotFound
		}
		return nil, fmt.Errorf("query module by name: %w", err)
	}
	return module, nil
}

func (r *ModuleRepository) List(ctx context.Context) ([]domain.ModuleRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, base_repo, total_steps FROM modules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var modules []domain.ModuleRow
	for rows.Next() {
		var m domain.ModuleRow
		if err := rows.Scan(&m.ID, &m.Name, &m.BaseRepo, &m.TotalSteps); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}
