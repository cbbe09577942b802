package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Container names and partition key paths of the issue tracker database.
const (
	UsersContainer    = "Users"
	ProjectsContainer = "Projects"
	IssuesContainer   = "Issues"
)

// DefaultSpecs returns the three containers the tracker persists to. Issues also holds comments.
func DefaultSpecs() []ContainerSpec {
	return []ContainerSpec{
		{Name: UsersContainer, PartitionKeyPath: "/userId"},
		{Name: ProjectsContainer, PartitionKeyPath: "/projectId"},
		{Name: IssuesContainer, PartitionKeyPath: "/_partitionKey"},
	}
}

// Options tunes the containers returned by Connect.
type Options struct {
	Logger           *slog.Logger
	OperationTimeout time.Duration
}

// Database holds live container handles.
type Database struct {
	provider   Provider
	containers map[string]Container
}

// Connect ensures every container in specs exists and returns live handles. Any failure
// is wrapped with ErrUnavailable; callers must not serve requests without a Database.
// Connect owns provider: on failure it is closed, on success Database.Close closes it.
func Connect(ctx context.Context, provider Provider, opts Options, specs ...ContainerSpec) (*Database, error) {
	db, err := connect(ctx, provider, opts, specs)
	if err != nil {
		if closeErr := provider.Close(); closeErr != nil && opts.Logger != nil {
			opts.Logger.Warn("close provider after failed connect", "backend", provider.Name(), "error", closeErr)
		}
		return nil, err
	}
	return db, nil
}

func connect(ctx context.Context, provider Provider, opts Options, specs []ContainerSpec) (*Database, error) {
	if len(specs) == 0 {
		specs = DefaultSpecs()
	}

	if err := provider.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s ping failed: %v", ErrUnavailable, provider.Name(), err)
	}

	db := &Database{
		provider:   provider,
		containers: make(map[string]Container, len(specs)),
	}

	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		container, err := provider.EnsureContainer(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("%w: ensure container %s: %v", ErrUnavailable, spec.Name, err)
		}

		if opts.Logger != nil {
			container = WithLogging(container, opts.Logger)
		}
		if opts.OperationTimeout > 0 {
			container = WithTimeout(container, opts.OperationTimeout)
		}

		db.containers[spec.Name] = container
		if opts.Logger != nil {
			opts.Logger.Info("container ready",
				"backend", provider.Name(),
				"container", spec.Name,
				"partition_key", spec.PartitionKeyPath)
		}
	}

	return db, nil
}

// Container returns a container handle by name.
func (d *Database) Container(name string) (Container, error) {
	c, ok := d.containers[name]
	if !ok {
		return nil, fmt.Errorf("container %s was not opened", name)
	}
	return c, nil
}

// MustContainer returns a container handle by name and panics when it was not opened.
func (d *Database) MustContainer(name string) Container {
	c, err := d.Container(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Users returns the Users container.
func (d *Database) Users() Container { return d.MustContainer(UsersContainer) }

// Projects returns the Projects container.
func (d *Database) Projects() Container { return d.MustContainer(ProjectsContainer) }

// Issues returns the Issues container, which also stores comments.
func (d *Database) Issues() Container { return d.MustContainer(IssuesContainer) }

// Provider returns the backend behind the database.
func (d *Database) Provider() Provider {
	return d.provider
}

// Ping checks the backend.
func (d *Database) Ping(ctx context.Context) error {
	return d.provider.Ping(ctx)
}

// Close releases the backend.
func (d *Database) Close() error {
	return d.provider.Close()
}
