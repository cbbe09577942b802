// Package container wires the application together. Components are registered as
// named factories and resolved lazily, so each one is built once and only when
// something depends on it.
package container

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Container resolves named components.
type Container interface {
	Register(name string, factory Factory) error
	RegisterSingleton(name string, factory Factory) error
	Resolve(name string) (interface{}, error)
	ResolveWithContext(ctx context.Context, name string) (interface{}, error)
	Has(name string) bool
}

// Factory builds one component. It resolves its own dependencies through c with ctx so
// that dependency cycles are detected.
type Factory func(ctx context.Context, c Container) (interface{}, error)

type registration struct {
	factory   Factory
	singleton bool

	once     sync.Once
	instance interface{}
	err      error
}

func (r *registration) build(ctx context.Context, c Container) (interface{}, error) {
	if !r.singleton {
		return r.factory(ctx, c)
	}
	r.once.Do(func() {
		r.instance, r.err = r.factory(ctx, c)
	})
	return r.instance, r.err
}

// DIContainer is the default Container. A name can be registered once.
type DIContainer struct {
	mu            sync.RWMutex
	registrations map[string]*registration
}

// NewContainer creates an empty container.
func NewContainer() *DIContainer {
	return &DIContainer{registrations: make(map[string]*registration)}
}

// Register adds a factory that runs on every resolution.
func (c *DIContainer) Register(name string, factory Factory) error {
	return c.add(name, &registration{factory: factory})
}

// RegisterSingleton adds a factory that runs on first resolution; its result, error
// included, is returned from then on.
func (c *DIContainer) RegisterSingleton(name string, factory Factory) error {
	return c.add(name, &registration{factory: factory, singleton: true})
}

func (c *DIContainer) add(name string, r *registration) error {
	if r.factory == nil {
		return NewDependencyError("INVALID_FACTORY", "nil factory for "+name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.registrations[name]; exists {
		return NewDependencyError("SERVICE_ALREADY_REGISTERED", "service already registered: "+name)
	}
	c.registrations[name] = r
	return nil
}

// Resolve builds or returns name.
func (c *DIContainer) Resolve(name string) (interface{}, error) {
	return c.ResolveWithContext(context.Background(), name)
}

// ResolveWithContext builds or returns name. ctx carries the chain of components being
// built, and a name that appears twice in it is a DEPENDENCY_CYCLE.
func (c *DIContainer) ResolveWithContext(ctx context.Context, name string) (interface{}, error) {
	c.mu.RLock()
	r, exists := c.registrations[name]
	c.mu.RUnlock()

	if !exists {
		return nil, NewDependencyError("SERVICE_NOT_FOUND", "service not registered: "+name)
	}

	chain, _ := ctx.Value(resolutionChainKey{}).([]string)
	if slices.Contains(chain, name) {
		cycle := append(slices.Clone(chain), name)
		return nil, NewDependencyError("DEPENDENCY_CYCLE", strings.Join(cycle, " -> "))
	}
	ctx = context.WithValue(ctx, resolutionChainKey{}, append(slices.Clone(chain), name))

	return r.build(ctx, c)
}

type resolutionChainKey struct{}

// Has reports whether name is registered.
func (c *DIContainer) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.registrations[name]
	return exists
}

// DependencyError is returned for wiring mistakes.
type DependencyError struct {
	Code    string
	Message string
}

func (e *DependencyError) Error() string {
	return e.Code + ": " + e.Message
}

// NewDependencyError creates a DependencyError.
func NewDependencyError(code, message string) *DependencyError {
	return &DependencyError{Code: code, Message: message}
}

// Resolve resolves name and asserts it to T.
func Resolve[T any](ctx context.Context, c Container, name string) (T, error) {
	var zero T
	instance, err := c.ResolveWithContext(ctx, name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, NewDependencyError("SERVICE_TYPE_MISMATCH", fmt.Sprintf("service %s has type %T", name, instance))
	}
	return typed, nil
}
