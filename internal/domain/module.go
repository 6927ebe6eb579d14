package domain

import "context"

// ModuleRow is the persisted shape of a registered teaching module. The
// in-memory Module (steps, bootstrap function) lives in the engine package;
// the row exists so sessions can reference modules relationally and so the
// home page can list them without touching the registry.
type ModuleRow struct {
	ID         int64
	Name       string
	BaseRepo   string // template repository, empty when the module starts from an empty repo
	TotalSteps int
}

// ModuleRepository defines persistence operations for module rows.
type ModuleRepository interface {
	// Upsert inserts the module or refreshes base_repo and total_steps for
	// an existing name. Run at startup for every registered module.
	Upsert(ctx context.Context, module *ModuleRow) error
	GetByName(ctx context.Context, name string) (*ModuleRow, error)
	List(ctx context.Context) ([]ModuleRow, error)
}
