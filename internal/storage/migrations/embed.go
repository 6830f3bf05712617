// Package migrations applies the embedded PostgreSQL and ClickHouse schemas.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// PostgresFS embeds the ledger schema.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds the price archive schema.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS

type migration struct {
	name string
	sql  string
}

// load returns the .sql files of dir in lexical order, skipping empty ones.
func load(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var migrations []migration
	for _, name := range names {
		data, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		migrations = append(migrations, migration{name: name, sql: string(data)})
	}
	return migrations, nil
}
