package workspace

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/gather/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Cache is the machine-oriented persistence tier: one sqlite database for
// the whole gather home, holding every project's metadata. It is the
// preferred load path; when it is missing or unreadable the store falls
// back to the durable text tier.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// OpenCache opens (creating if needed) the cache database and ensures the
// schema exists.
func OpenCache(dbPath string) (*Cache, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	// busy_timeout first so later statements wait on locks instead of
	// failing immediately.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}

	return &Cache{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// SaveProject replaces the cached record set for one project inside a
// single transaction.
func (c *Cache) SaveProject(p *models.Project) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin cache transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO projects (name, created_at, last_updated) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET created_at = excluded.created_at, last_updated = excluded.last_updated`,
		p.Name, p.CreatedAt, p.LastUpdated,
	); err != nil {
		return fmt.Errorf("upsert project %s: %w", p.Name, err)
	}

	if _, err := tx.Exec(`DELETE FROM source_directories WHERE project = ?`, p.Name); err != nil {
		return fmt.Errorf("clear source directories: %w", err)
	}
	for i, dir := range p.SourceDirectories {
		if _, err := tx.Exec(
			`INSERT INTO source_directories (project, position, path) VALUES (?, ?, ?)`,
			p.Name, i, dir,
		); err != nil {
			return fmt.Errorf("insert source directory %s: %w", dir, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM files WHERE project = ?`, p.Name); err != nil {
		return fmt.Errorf("clear file records: %w", err)
	}
	for _, rec := range p.Files {
		if _, err := tx.Exec(
			`INSERT INTO files (project, full_original_path, original_path, new_path, original_directory, size, mtime)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.Name, rec.FullOriginalPath, rec.OriginalPath, rec.NewPath, rec.OriginalDirectory, rec.Size, rec.Mtime,
		); err != nil {
			return fmt.Errorf("insert file record %s: %w", rec.FullOriginalPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache transaction: %w", err)
	}
	return nil
}

// LoadProject reads one project from the cache. ok is false when the
// project has no cached record.
func (c *Cache) LoadProject(name string) (*models.Project, bool, error) {
	p := &models.Project{
		Files: make(map[string]*models.FileRecord),
	}

	err := c.db.QueryRow(
		`SELECT name, created_at, last_updated FROM projects WHERE name = ?`, name,
	).Scan(&p.Name, &p.CreatedAt, &p.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query project %s: %w", name, err)
	}

	rows, err := c.db.Query(
		`SELECT path FROM source_directories WHERE project = ? ORDER BY position`, name,
	)
	if err != nil {
		return nil, false, fmt.Errorf("query source directories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var dir string
		if err := rows.Scan(&dir); err != nil {
			return nil, false, fmt.Errorf("scan source directory: %w", err)
		}
		p.SourceDirectories = append(p.SourceDirectories, dir)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate source directories: %w", err)
	}

	fileRows, err := c.db.Query(
		`SELECT full_original_path, original_path, new_path, original_directory, size, mtime
		 FROM files WHERE project = ?`, name,
	)
	if err != nil {
		return nil, false, fmt.Errorf("query file records: %w", err)
	}
	defer fileRows.Close()
	for fileRows.Next() {
		rec := &models.FileRecord{}
		if err := fileRows.Scan(
			&rec.FullOriginalPath, &rec.OriginalPath, &rec.NewPath,
			&rec.OriginalDirectory, &rec.Size, &rec.Mtime,
		); err != nil {
			return nil, false, fmt.Errorf("scan file record: %w", err)
		}
		p.Files[rec.FullOriginalPath] = rec
	}
	if err := fileRows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate file records: %w", err)
	}

	return p, true, nil
}

// ProjectSummary is one row of ListProjects.
type ProjectSummary struct {
	Name        string
	LastUpdated string
	FileCount   int
}

// ListProjects returns cached projects ordered by name.
func (c *Cache) ListProjects() ([]ProjectSummary, error) {
	rows, err := c.db.Query(
		`SELECT p.name, p.last_updated, COUNT(f.full_original_path)
		 FROM projects p LEFT JOIN files f ON f.project = p.name
		 GROUP BY p.name ORDER BY p.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []ProjectSummary
	for rows.Next() {
		var s ProjectSummary
		if err := rows.Scan(&s.Name, &s.LastUpdated, &s.FileCount); err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}

// HasProject reports whether the cache holds a record for the name.
func (c *Cache) HasProject(name string) (bool, error) {
	var count int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM projects WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check project %s: %w", name, err)
	}
	return count > 0, nil
}
