// Package main runs the PocketBase admin UI and migrate command against the issue store.
package main

import (
	"log"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"

	// Import migrations package to register all migrations via init()
	_ "github.com/ericfisherdev/simple-easy-issues/migrations"
)

const defaultDataDir = "pb_data"

func main() {
	dataDir := os.Getenv("STORE_DATA_DIR")
	if dataDir == "" {
		dataDir = defaultDataDir
	}

	app := pocketbase.NewWithConfig(pocketbase.Config{DefaultDataDir: dataDir})

	// The Users, Projects and Issues collections are created by Go migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: false,
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
