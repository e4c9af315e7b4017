package main

import (
	"io/fs"
	"os"

	"bookcatalog/internal/store"
)

// migrationsSource returns the filesystem and directory goose reads from.
// MIGRATIONS_DIR switches from the embedded migrations to a directory on disk.
func migrationsSource() (fs.FS, string) {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return nil, v
	}
	return store.MigrationsFS, store.MigrationsDir
}
