// Package pocketbase implements the document store on an embedded PocketBase
// application. Each container is a base collection holding the document id, its
// partition key and the JSON document; (partitionKey, docId) is unique.
package pocketbase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pocketbase/pocketbase/core"
	_ "github.com/pocketbase/pocketbase/migrations" // PocketBase system tables

	"github.com/ericfisherdev/simple-easy-issues/internal/store"
)

// Record field names shared by every container collection.
const (
	FieldDocID        = "docId"
	FieldPartitionKey = "partitionKey"
	FieldDocument     = "document"
)

const maxDocumentSize = 4 << 20

// Config configures the embedded PocketBase application.
type Config struct {
	DataDir       string
	EncryptionEnv string
	QueryTimeout  time.Duration
	Logger        *slog.Logger
}

// Provider is a store backend over a bootstrapped PocketBase app.
type Provider struct {
	app    core.App
	logger *slog.Logger
	owned  bool
}

// Open bootstraps a PocketBase app in cfg.DataDir and applies every registered migration.
func Open(cfg Config) (*Provider, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("%w: data directory is required", store.ErrUnavailable)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create data directory: %v", store.ErrUnavailable, err)
	}

	queryTimeout := core.DefaultQueryTimeout
	if cfg.QueryTimeout > 0 {
		queryTimeout = cfg.QueryTimeout
	}

	app := core.NewBaseApp(core.BaseAppConfig{
		DataDir:          cfg.DataDir,
		EncryptionEnv:    cfg.EncryptionEnv,
		DataMaxOpenConns: core.DefaultDataMaxOpenConns,
		DataMaxIdleConns: core.DefaultDataMaxIdleConns,
		AuxMaxOpenConns:  core.DefaultAuxMaxOpenConns,
		AuxMaxIdleConns:  core.DefaultAuxMaxIdleConns,
		QueryTimeout:     queryTimeout,
	})

	if err := app.Bootstrap(); err != nil {
		return nil, fmt.Errorf("%w: bootstrap pocketbase: %v", store.ErrUnavailable, err)
	}
	if err := app.RunAllMigrations(); err != nil {
		_ = app.ResetBootstrapState()
		return nil, fmt.Errorf("%w: run migrations: %v", store.ErrUnavailable, err)
	}

	p := New(app, cfg.Logger)
	p.owned = true
	return p, nil
}

// New wraps an already bootstrapped app. Close leaves such an app running.
func New(app core.App, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{app: app, logger: logger}
}

// App exposes the underlying PocketBase app.
func (p *Provider) App() core.App { return p.app }

// Name returns the backend name.
func (p *Provider) Name() string { return "pocketbase" }

// EnsureContainer creates the backing collection on first use.
func (p *Provider) EnsureContainer(_ context.Context, spec store.ContainerSpec) (store.Container, error) {
	collection, err := EnsureCollection(p.app, spec)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("pocketbase collection ready", "collection", collection.Name)
	return &Container{app: p.app, spec: spec, collection: collection.Name}, nil
}

// Ping runs a trivial query against the data database.
func (p *Provider) Ping(ctx context.Context) error {
	if !p.app.IsBootstrapped() {
		return store.ErrUnavailable
	}
	if _, err := p.app.DB().NewQuery("SELECT 1").WithContext(ctx).Execute(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

// Close shuts down the app when it was opened by Open.
func (p *Provider) Close() error {
	if !p.owned {
		return nil
	}
	return p.app.ResetBootstrapState()
}

// CollectionName maps a container name to its PocketBase collection.
func CollectionName(spec store.ContainerSpec) string {
	return "doc_" + spec.Name
}

// EnsureCollection returns the collection backing spec, creating it when missing.
// An existing collection is reused as is.
func EnsureCollection(app core.App, spec store.ContainerSpec) (*core.Collection, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	name := CollectionName(spec)
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find collection %s: %w", name, err)
	}

	collection := core.NewBaseCollection(name)
	collection.Fields.Add(
		&core.TextField{Name: FieldDocID, Required: true, Max: 255},
		&core.TextField{Name: FieldPartitionKey, Required: true, Max: 512},
		&core.JSONField{Name: FieldDocument, Required: true, MaxSize: maxDocumentSize},
	)
	collection.AddIndex("idx_"+name+"_key", true, FieldPartitionKey+", "+FieldDocID, "")

	if err := app.Save(collection); err != nil {
		return nil, fmt.Errorf("create collection %s: %w", name, err)
	}
	return collection, nil
}
