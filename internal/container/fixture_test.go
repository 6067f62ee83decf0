package container

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"
	"testing"
)

// Identity values shared by the test bundles.
const (
	testIdentifier = "5f2b7c64-8e1a-4b0e-9c3d-2a6f8e4b1d09"
	testSessionID  = "mouse01-2021-01-05-task"
)

// bundleWriter assembles a session bundle file for a test. It mirrors the
// exporter's schema; tests add only the products they exercise.
type bundleWriter struct {
	t    *testing.T
	db   *sql.DB
	path string
}

func newBundleWriter(t *testing.T, name string) *bundleWriter {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
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

	return &bundleWriter{t: t, db: db, path: path}
}

func (w *bundleWriter) putMeta(key, value string) {
	w.t.Helper()
	if _, err := w.db.Exec("INSERT OR REPLACE INTO session_meta (key, value) VALUES (?, ?)", key, value); err != nil {
		w.t.Fatalf("put session_meta %s: %v", key, err)
	}
}

func (w *bundleWriter) putSubject(key, value string) {
	w.t.Helper()
	if _, err := w.db.Exec("INSERT OR REPLACE INTO subject (key, value) VALUES (?, ?)", key, value); err != nil {
		w.t.Fatalf("put subject %s: %v", key, err)
	}
}

func (w *bundleWriter) deleteSubject(key string) {
	w.t.Helper()
	if _, err := w.db.Exec("DELETE FROM subject WHERE key = ?", key); err != nil {
		w.t.Fatalf("delete subject %s: %v", key, err)
	}
}

// addSeries writes one data product. Pass nil for a NULL data or timestamps
// column.
func (w *bundleWriter) addSeries(module, name, kind string, data, timestamps []float64) {
	w.t.Helper()
	if _, err := w.db.Exec(
		"INSERT INTO series (module, name, kind, unit, data, timestamps) VALUES (?, ?, ?, ?, ?, ?)",
		module, name, kind, "a.u.", encodeFloats(data), encodeFloats(timestamps),
	); err != nil {
		w.t.Fatalf("add series %s/%s: %v", module, name, err)
	}
}

func (w *bundleWriter) addPose(module, product, keypoint string, x, y, likelihood []float64) {
	w.t.Helper()
	if _, err := w.db.Exec(
		"INSERT INTO pose (module, product, keypoint, x, y, likelihood) VALUES (?, ?, ?, ?, ?, ?)",
		module, product, keypoint, encodeFloats(x), encodeFloats(y), encodeFloats(likelihood),
	); err != nil {
		w.t.Fatalf("add pose %s/%s/%s: %v", module, product, keypoint, err)
	}
}

// addROIs writes the roi name/description arrays and the dff matrix.
// samples is row-major, one inner slice per imaging sample.
func (w *bundleWriter) addROIs(names, descriptions []string, samples [][]float64) {
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

// addTrials creates and fills one trial table with float64 columns. NaN
// values are stored as NULL the way the exporter writes missing attributes.
func (w *bundleWriter) addTrials(table string, cols []string, rows [][]float64) {
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

// done closes the writer and returns the bundle path.
func (w *bundleWriter) done() string {
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

// writeTaskBundle builds a complete task-session bundle carrying both raw
// and downsampled products, so one fixture serves loads under either flag.
func writeTaskBundle(t *testing.T) string {
	t.Helper()
	w := newBundleWriter(t, "mouse01_2021-01-05_task-day3.sdb")

	w.putMeta("identifier", testIdentifier)
	w.putMeta("session_id", testSessionID)
	w.putMeta("session_description", "lever press task")
	w.putMeta("notes", "## Session notes\n\nSteady licking, two grooming bouts.")
	w.putMeta("session_start_time", "2021-01-05T09:30:00+09:00")

	w.putSubject("subject_id", "mouse01")
	w.putSubject("date_of_birth", "2020-06-01T00:00:00+09:00")
	w.putSubject("age", "P218D")
	w.putSubject("sex", "F")

	imaging := []float64{0.0, 0.1, 0.2, 0.3, 0.4}
	daqClock := []float64{0.00, 0.02, 0.04, 0.06, 0.08, 0.10}
	videoClock := []float64{0.0, 0.033, 0.066, 0.099}

	// Anchor streams. The exporter never embeds image or video frames, so
	// widefield_blue and body_video carry timestamps only.
	w.addSeries(moduleAcquisition, "widefield_blue", "imaging", nil, imaging)
	w.addSeries(moduleAcquisition, "body_video", "video", nil, videoClock)

	// Raw acquisition channels on the DAQ clock.
	w.addSeries(moduleAcquisition, "humidity_raw", "timeseries", []float64{45, 45, 46, 46, 45, 45}, daqClock)
	w.addSeries(moduleAcquisition, "Reward", "timeseries", []float64{0, 1, 0, 2, 0, 0}, daqClock)
	w.addSeries(moduleAcquisition, "State_lever", "timeseries", []float64{0, 0, 1, 1, 0, 0}, daqClock)
	w.addSeries(moduleAcquisition, "Tone", "timeseries", []float64{0, 0, 0, 1, 1, 0}, daqClock)
	w.addSeries(moduleAcquisition, "State_task", "timeseries", []float64{0, 1, 2, 2, 3, 0}, daqClock)
	w.addSeries(moduleAcquisition, "Room.Temp-probe", "timeseries", []float64{22.1, 22.2, 22.1, 22.0, 22.1, 22.2}, daqClock)

	// Raw pupil products live under the behavior module.
	w.addSeries(moduleBehavior, "pupil_tracking", "timeseries", []float64{0.51, 0.52, 0.50, 0.49}, videoClock)
	w.addPose(moduleBehavior, "eye_position", "center", []float64{12.0, 12.1, 12.2, 12.1}, []float64{8.0, 8.1, 8.0, 7.9}, nil)

	// Downsampled products, resampled onto the imaging clock.
	w.addSeries(moduleDownsampled, "Reward_ds", "timeseries", []float64{0, 1, 0, 1, 0}, imaging)
	w.addSeries(moduleDownsampled, "State_lever_ds", "timeseries", []float64{0, 0, 1, 1, 0}, imaging)
	w.addSeries(moduleDownsampled, "Tone_ds", "timeseries", []float64{0, 0, 0, 1, 1}, imaging)
	w.addSeries(moduleDownsampled, "State_task_ds", "timeseries", []float64{0, 1, 2, 2, 3}, imaging)
	w.addSeries(moduleDownsampled, "Room.Temp-probe_ds", "timeseries", []float64{22.1, 22.2, 22.1, 22.0, 22.1}, imaging)
	w.addSeries(moduleDownsampled, "pupil_tracking", "timeseries", []float64{0.51, 0.52, 0.50, 0.49, 0.50}, imaging)
	w.addPose(moduleDownsampled, "eye_position", "center", []float64{12.0, 12.1, 12.2, 12.1, 12.0}, []float64{8.0, 8.1, 8.0, 7.9, 8.0}, nil)

	// Keypoint products: raw under behavior with likelihood, downsampled
	// without.
	bodyKeypoints := []struct {
		name string
		base float64
	}{
		{"nose", 30},
		{"paw_l", 55},
	}
	for _, kp := range bodyKeypoints {
		x := []float64{kp.base, kp.base + 0.5, kp.base + 1, kp.base + 0.5}
		y := []float64{kp.base / 2, kp.base/2 + 0.25, kp.base / 2, kp.base/2 - 0.25}
		like := []float64{0.99, 0.98, 0.97, 0.99}
		w.addPose(moduleBehavior, "body_video_keypoints", kp.name, x, y, like)
		w.addPose(moduleDownsampled, "body_video_keypoints", kp.name, x[:3], y[:3], nil)
	}
	w.addPose(moduleBehavior, "face_video_keypoints", "jaw", []float64{5, 6, 5, 6}, []float64{2, 2, 3, 2}, []float64{0.9, 0.9, 0.8, 0.9})
	w.addPose(moduleDownsampled, "face_video_keypoints", "jaw", []float64{5, 6, 5}, []float64{2, 2, 3}, nil)
	w.addPose(moduleBehavior, "eye_video_keypoints", "lid", []float64{1, 1, 2, 1}, []float64{4, 4, 5, 4}, []float64{0.95, 0.94, 0.95, 0.96})
	w.addPose(moduleDownsampled, "eye_video_keypoints", "lid", []float64{1, 1, 2}, []float64{4, 4, 5}, nil)

	w.addTrials(trialsRawTable,
		[]string{"start_time", "stop_time", "reaction_time"},
		[][]float64{
			{0.5, 1.5, 0.21},
			{2.0, 3.0, math.NaN()},
			{3.5, 4.5, 0.18},
		})
	w.addTrials(trialsDownsampledTable,
		[]string{"start_time", "stop_time", "reaction_time"},
		[][]float64{
			{0.5, 1.5, 0.21},
			{2.0, 3.0, math.NaN()},
		})

	w.addROIs(
		[]string{"visual_l", "motor_l", "visual_r", "motor_r"},
		[]string{"left visual cortex", "left motor cortex", "right visual cortex", "right motor cortex"},
		[][]float64{
			{0.10, 0.20, 0.11, 0.21},
			{0.12, 0.22, 0.13, 0.23},
			{0.14, 0.24, 0.15, 0.25},
			{0.16, 0.26, 0.17, 0.27},
			{0.18, 0.28, 0.19, 0.29},
		})

	return w.done()
}
