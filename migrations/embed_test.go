package migrations

import (
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"testing"
)

var migrationNamePattern = regexp.MustCompile(`^\d{4}_[a-z0-9_]+\.sql$`)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		t.Fatal("expected migrations to be embedded")
	}
	sort.Strings(files)

	if files[0] != "0001_bot_config.sql" {
		t.Fatalf("expected first migration 0001_bot_config.sql, got %s", files[0])
	}
}

func TestMigrationFilesFollowNamingAndMarkers(t *testing.T) {
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	seen := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		if !migrationNamePattern.MatchString(name) {
			t.Errorf("migration %s does not match NNNN_name.sql", name)
		}

		prefix := name[:4]
		if seen[prefix] {
			t.Errorf("duplicate migration number %s", prefix)
		}
		seen[prefix] = true

		content, err := fs.ReadFile(FS, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.Contains(string(content), "-- +migrate Up") {
			t.Errorf("migration %s is missing an Up marker", name)
		}
	}
}
