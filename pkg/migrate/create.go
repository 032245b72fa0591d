package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)
	dialects       = []string{DialectSQLite, DialectPostgres}
)

// CreateSQLMigration creates one goose SQL migration per dialect sharing a version:
//
//	<root>/sqlite/<YYYYMMDDHHMMSS>_<name>.sql
//	<root>/postgres/<YYYYMMDDHHMMSS>_<name>.sql
func CreateSQLMigration(root string, name string) ([]string, error) {
	return createSQLMigration(root, name, time.Now().UTC())
}

func createSQLMigration(root string, name string, now time.Time) ([]string, error) {
	if root == "" {
		return nil, fmt.Errorf("dir is required")
	}

	safe := sanitizeName(name)
	if safe == "" {
		return nil, fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	filename := fmt.Sprintf("%s_%s.sql", now.Format("20060102150405"), safe)

	paths := make([]string, 0, len(dialects))
	for _, dialect := range dialects {
		dir, err := DialectDir(root, dialect)
		if err != nil {
			return nil, err
		}
		fullpath := filepath.Join(dir, filename)
		// fail if exists
		if _, err := os.Stat(fullpath); err == nil {
			return nil, fmt.Errorf("migration already exists: %s", fullpath)
		}
		paths = append(paths, fullpath)
	}

	template := fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`, safe, safe)

	for _, fullpath := range paths {
		if err := os.MkdirAll(filepath.Dir(fullpath), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %q: %w", filepath.Dir(fullpath), err)
		}
		if err := os.WriteFile(fullpath, []byte(template), 0o644); err != nil {
			return nil, fmt.Errorf("write migration %q: %w", fullpath, err)
		}
	}

	return paths, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}
