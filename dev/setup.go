package main

import (
	"fmt"
	devenv "modelcatalog/dev/env"
	"modelcatalog/internal/db"
	"modelcatalog/pkg/migrations"
	"os"
	"path/filepath"
)

const catalogDbName = "catalog.db"

func CreateEmptyCatalogDB() error {
	path, err := devenv.ResolvePath(filepath.Join("<dev_state>", catalogDbName))
	if err != nil {
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	catalog, err := migrations.OpenAndMigrateDB(db.Schema, path)
	if err != nil {
		return err
	}
	return catalog.Close()
}

// CreateConfig copies the example config into the workspace root so that
// `go run ./cmd/modelcatalog` picks it up, an existing config is kept.
func CreateConfig() error {
	_, err := os.Stat("config.json5")
	if err == nil {
		fmt.Println("config.json5 already exists")
		return nil
	}

	example, err := os.ReadFile(filepath.Join("cmd", "modelcatalog", "config.example.json5"))
	if err != nil {
		return err
	}
	fmt.Println("writing config.json5")
	return os.WriteFile("config.json5", example, 0644)
}
