// Package containertest builds session bundle files for tests. It mirrors
// the exporter's schema so report and command tests can exercise the real
// extraction path without checked-in binary fixtures.
package containertest

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// Modules the exporter groups data products under.
const (
	ModuleAcquisition = "acquisition"
	ModuleDownsampled = "downsampled"
	ModuleBehavior    = "behavior"
)

// Writer assembles a session bundle file for a test. Tests add only the
// products they exercise.
type Writer struct {
	t    *testing.T
	db   *sql.DB
	path string
}

// NewWriter creates an empty bundle with the exporter's schema under the
// test's temp directory.
func NewWriter(t *testing.T, name string) *Writer {
	t.Helper()
	return NewWriterAt(t, filepath.Join(t.TempDir(), name))
}

// NewWriterAt creates an empty bundle at an explicit path, for tests that
// lay out a whole animal folder.
func NewWriterAt(t *testing.T, path string) *Writer {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}

	ddl := []string{
		"CREATE TABLE session_meta (key TEXT PRIMARY KEY, value TEXT)",
		"CREATE TABLE subject (key TEXT PRIMARY KEY, value TEXT)",
		"CREATE TABLE series (module TEXT, name TEXT, kind TEXT, unit TEXT, data BLOB, timestamps BLOB, PRIMARY KEY (module, name))",
		"CREATE TABLE pose (module TEXT, product TEXT, keypoint TEXT, x BLOB, y BLOB, likelihood BLOB)",
		"CREATE TABLE roi (idx INTEGER PRIMARY KEY, name TEXT, description TEXT)",
		"CREATE TABLE dff (n_samples INTEGER, n_rois INTEGER, data BLOB)",
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create fixture schema: %v", err)
		}
	}

	return &Writer{t: t, db: db, path: path}
}

// PutMeta sets one session_meta key.
func (w *Writer) PutMeta(key, value string) {
	w.t.Helper()
	if _, err := w.db.Exec("INSERT OR REPLACE INTO session_meta (key, value) VALUES (?, ?)", key, value); err != nil {
		w.t.Fatalf("put session_meta %s: %v", key, err)
	}
}

// PutSubject sets one subject key.
func (w *Writer) PutSubject(key, value string) {
	w.t.Helper()
	if _, err := w.db.Exec("INSERT OR REPLACE INTO subject (key, value) VALUES (?, ?)", key, value); err != nil {
		w.t.Fatalf("put subject %s: %v", key, err)
	}
}

// AddSeries writes one data product. Pass nil for a NULL data or timestamps
// column.
func (w *Writer) AddSeries(module, name, kind string, data, timestamps []float64) {
	w.t.Helper()
	if _, err := w.db.Exec(
		"INSERT INTO series (module, name, kind, unit, data, timestamps) VALUES (?, ?, ?, ?, ?, ?)",
		module, name, kind, "a.u.", encodeFloats(data), encodeFloats(timestamps),
	); err != nil {
		w.t.Fatalf("add series %s/%s: %v", module, name, err)
	}
}

// AddPose writes one keypoint row of a pose product.
func (w *Writer) AddPose(module, product, keypoint string, x, y, likelihood []float64) {
	w.t.Helper()
	if _, err := w.db.Exec(
		"INSERT INTO pose (module, product, keypoint, x, y, likelihood) VALUES (?, ?, ?, ?, ?, ?)",
		module, product, keypoint, encodeFloats(x), encodeFloats(y), encodeFloats(likelihood),
	); err != nil {
		w.t.Fatalf("add pose %s/%s/%s: %v", module, product, keypoint, err)
	}
}

// AddROIs writes the roi name/description arrays and the dff matrix.
// samples is row-major, one inner slice per imaging sample.
func (w *Writer) AddROIs(names, descriptions []string, samples [][]float64) {
	w.t.Helper()
	for i, name := range names {
		if _, err := w.db.Exec(
			"INSERT INTO roi (idx, name, description) VALUES (?, ?, ?)",
			i, name, descriptions[i],
		); err != nil {
			w.t.Fatalf("add roi %s: %v", name, err)
		}
	}

	flat := make([]float64, 0, len(samples)*len(names))
	for _, row := range samples {
		flat = append(flat, row...)
	}
	if _, err := w.db.Exec(
		"INSERT INTO dff (n_samples, n_rois, data) VALUES (?, ?, ?)",
		len(samples), len(names), encodeFloats(flat),
	); err != nil {
		w.t.Fatalf("add dff: %v", err)
	}
}

// AddTrials creates and fills one trial table with float64 columns. NaN
// values are stored as NULL the way the exporter writes missing attributes.
func (w *Writer) AddTrials(table string, cols []string, rows [][]float64) {
	w.t.Helper()

	ddl := "CREATE TABLE " + table + " ("
	placeholders := ""
	for i, col := range cols {
		if i > 0 {
			ddl += ", "
			placeholders += ", "
		}
		ddl += col + " REAL"
		placeholders += "?"
	}
	ddl += ")"
	if _, err := w.db.Exec(ddl); err != nil {
		w.t.Fatalf("create %s: %v", table, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, placeholders)
	for _, row := range rows {
		args := make([]any, len(row))
		for i, v := range row {
			if math.IsNaN(v) {
				args[i] = nil
			} else {
				args[i] = v
			}
		}
		if _, err := w.db.Exec(insert, args...); err != nil {
			w.t.Fatalf("insert %s row: %v", table, err)
		}
	}
}

// Done closes the writer and returns the bundle path.
func (w *Writer) Done() string {
	w.t.Helper()
	if err := w.db.Close(); err != nil {
		w.t.Fatalf("close fixture db: %v", err)
	}
	return w.path
}

// encodeFloats renders samples the way the exporter stores arrays. nil in,
// nil out, so absent columns stay NULL.
func encodeFloats(vals []float64) []byte {
	if vals == nil {
		return nil
	}
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// WriteMinimalBundle builds a bundle at path that loads downsampled under
// any session kind: metadata, the imaging anchor stream, one downsampled
// channel and one left/right ROI pair. Tests layer further products on top
// through the returned writer before calling Done.
func WriteMinimalBundle(t *testing.T, path, subject string) *Writer {
	t.Helper()
	w := NewWriterAt(t, path)

	w.PutMeta("identifier", "0d4cf1b2-9a3e-4f25-8c07-6b1e5a9d2f43")
	w.PutMeta("session_id", subject+"-session")
	w.PutMeta("session_description", "fixture session")
	w.PutMeta("notes", "fixture notes")
	w.PutMeta("session_start_time", "2021-01-05T09:30:00+09:00")

	w.PutSubject("subject_id", subject)
	w.PutSubject("date_of_birth", "2020-06-01T00:00:00+09:00")
	w.PutSubject("age", "P218D")
	w.PutSubject("sex", "F")

	imaging := []float64{0.0, 0.1, 0.2, 0.3}
	w.AddSeries(ModuleAcquisition, "widefield_blue", "imaging", nil, imaging)
	w.AddSeries(ModuleDownsampled, "Lick_ds", "timeseries", []float64{0, 1, 0, 1}, imaging)

	w.AddROIs(
		[]string{"visual_l", "visual_r"},
		[]string{"left visual cortex", "right visual cortex"},
		[][]float64{
			{0.10, 0.11},
			{0.12, 0.13},
			{0.14, 0.15},
			{0.16, 0.17},
		})

	return w
}
