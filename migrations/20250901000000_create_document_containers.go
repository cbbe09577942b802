// Package migrations registers the PocketBase schema of the issue tracker.
package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"

	"github.com/ericfisherdev/simple-easy-issues/internal/store"
	"github.com/ericfisherdev/simple-easy-issues/internal/store/pocketbase"
)

func init() {
	m.Register(func(app core.App) error {
		// Users, Projects and Issues (issues and their comments)
		for _, spec := range store.DefaultSpecs() {
			if _, err := pocketbase.EnsureCollection(app, spec); err != nil {
				return err
			}
		}
		return nil
	}, func(app core.App) error {
		for _, spec := range store.DefaultSpecs() {
			collection, err := app.FindCollectionByNameOrId(pocketbase.CollectionName(spec))
			if err != nil {
				continue
			}
			if err := app.Delete(collection); err != nil {
				return err
			}
		}
		return nil
	}, "20250901000000_create_document_containers.go")
}
