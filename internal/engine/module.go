package engine

import (
	"context"
	"fmt"

	"github.com/cs334f24/git-learner/internal/domain"
)

// BootstrapFunc provisions the initial repository for a fresh session of a
// module, typically via CreateRepo or CreateRepoFromTemplate with a random
// adjective-noun name.
type BootstrapFunc func(ctx context.Context, gh GitHubClient, org string) (*Repo, error)

// Module is a named, ordered sequence of steps. Modules are immutable after
// construction and shared process-wide; per-session state lives in Session.
type Module struct {
	name      string
	baseRepo  string
	steps     []Step
	bootstrap BootstrapFunc
}

// ModuleOption configures optional module attributes.
type ModuleOption func(*Module)

// WithBaseRepo records the template repository the bootstrap copies from.
func WithBaseRepo(baseRepo string) ModuleOption {
	return func(m *Module) { m.baseRepo = baseRepo }
}

// NewModule builds a module. A module with no steps is rejected.
func NewModule(name string, bootstrap BootstrapFunc, steps []Step, opts ...ModuleOption) (*Module, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: module name is required", domain.ErrInvalidInput)
	}
	if bootstrap == nil {
		return nil, fmt.Errorf("%w: module %q has no bootstrap", domain.ErrInvalidInput, name)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: module %q has no steps", domain.ErrInvalidInput, name)
	}

	m := &Module{name: name, bootstrap: bootstrap, steps: steps}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Name returns the module's unique name.
func (m *Module) Name() string { return m.name }

// BaseRepo returns the template repository name, or empty if the module
// starts from an empty repository.
func (m *Module) BaseRepo() string { return m.baseRepo }

// Len returns the total step count.
func (m *Module) Len() int { return len(m.steps) }

// Step returns the step at the 0-based index i.
func (m *Module) Step(i int) (Step, error) {
	if i < 0 || i >= len(m.steps) {
		return nil, fmt.Errorf("%w: no step with index %d in module with %d steps",
			domain.ErrInvalidStep, i, len(m.steps))
	}
	return m.steps[i], nil
}

// Bootstrap provisions a fresh repository for a new session under org.
func (m *Module) Bootstrap(ctx context.Context, gh GitHubClient, org string) (*Repo, error) {
	repo, err := m.bootstrap(ctx, gh, org)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// Registry is the process-wide name-keyed mapping of active modules. It is
// built once at startup and read-only afterwards.
type Registry struct {
	modules map[string]*Module
	order   []string
}

// NewRegistry builds a registry from the given modules, rejecting duplicate
// names. Listing order follows registration order.
func NewRegistry(modules ...*Module) (*Registry, error) {
	r := &Registry{modules: make(map[string]*Module, len(modules))}
	for _, m := range modules {
		if _, ok := r.modules[m.Name()]; ok {
			return nil, fmt.Errorf("%w: duplicate module name %q", domain.ErrInvalidInput, m.Name())
		}
		r.modules[m.Name()] = m
		r.order = append(r.order, m.Name())
	}
	return r, nil
}

// Lookup returns the module registered under name.
func (r *Registry) Lookup(name string) (*Module, error) {
	m, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrModuleNotFound, name)
	}
	return m, nil
}

// List returns the registered modules in registration order.
func (r *Registry) List() []*Module {
	out := make([]*Module, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.modules[name])
	}
	return out
}
