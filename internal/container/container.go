// Package container reads exported session bundles: single-file SQLite
// databases (.sdb) written by the lab's acquisition exporter. A bundle holds
// scalar session metadata, named data-product series grouped by module,
// keypoint pose products, trial tables, and the ROI fluorescence matrix.
//
// The package does not define or validate the exporter's schema beyond
// presence checks: required products that are absent surface as
// NotFoundError, optional ones as nil fields.
package container

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Modules the exporter groups data products under.
const (
	moduleAcquisition = "acquisition"
	moduleDownsampled = "downsampled"
	moduleBehavior    = "behavior"
)

// Bundle is an open session bundle. It is read-only and must be closed by
// the caller; Load manages that lifecycle for whole-session extraction.
type Bundle struct {
	db   *sql.DB
	path string
}

// Open opens the bundle at path read-only. The file must already exist;
// SQLite would otherwise create an empty database on first query.
func Open(path string) (*Bundle, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open bundle %s: %w", path, err)
	}

	// sql.Open defers the actual open; ping so unreadable files fail here.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open bundle %s: %w", path, err)
	}

	return &Bundle{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (b *Bundle) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// Path returns the bundle's file path.
func (b *Bundle) Path() string {
	return b.path
}

// tableExists reports whether a table of the given name exists in the bundle.
func (b *Bundle) tableExists(name string) (bool, error) {
	var count int
	err := b.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
		name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return count > 0, nil
}

// readKV reads one of the fixed key/value tables (session_meta, subject)
// into a map. NULL values read as empty strings.
func (b *Bundle) readKV(table string) (map[string]string, error) {
	rows, err := b.db.Query("SELECT key, value FROM " + table)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		out[key] = value.String
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return out, nil
}

// series is one named data product. data and timestamps are nil when the
// exporter wrote NULL (video products carry timestamps only, pose registry
// rows carry neither).
type series struct {
	module     string
	name       string
	kind       string
	unit       string
	data       []float64
	timestamps []float64
}

// series reads the named data product, or NotFoundError if absent.
func (b *Bundle) series(module, name string) (*series, error) {
	var kind, unit sql.NullString
	var data, ts []byte
	err := b.db.QueryRow(
		"SELECT kind, unit, data, timestamps FROM series WHERE module = ? AND name = ?",
		module, name,
	).Scan(&kind, &unit, &data, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Path: b.path, Product: module + "/" + name}
	}
	if err != nil {
		return nil, fmt.Errorf("read series %s/%s: %w", module, name, err)
	}

	s := &series{module: module, name: name, kind: kind.String, unit: unit.String}
	if data != nil {
		if s.data, err = decodeFloats(data); err != nil {
			return nil, fmt.Errorf("decode %s/%s data: %w", module, name, err)
		}
	}
	if ts != nil {
		if s.timestamps, err = decodeFloats(ts); err != nil {
			return nil, fmt.Errorf("decode %s/%s timestamps: %w", module, name, err)
		}
	}
	return s, nil
}

// hasSeries reports whether a named data product exists under a module.
func (b *Bundle) hasSeries(module, name string) (bool, error) {
	var count int
	err := b.db.QueryRow(
		"SELECT COUNT(*) FROM series WHERE module = ? AND name = ?",
		module, name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check series %s/%s: %w", module, name, err)
	}
	return count > 0, nil
}

// seriesNames lists the data-carrying products under a module in the order
// the exporter wrote them. Registry-only rows (NULL data) are skipped.
func (b *Bundle) seriesNames(module string) ([]string, error) {
	rows, err := b.db.Query(
		"SELECT name FROM series WHERE module = ? AND data IS NOT NULL ORDER BY rowid",
		module,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s series: %w", module, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan series name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s series: %w", module, err)
	}
	return names, nil
}
