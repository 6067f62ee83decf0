package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTree creates empty files under root, making parent directories as
// needed.
func writeTree(t *testing.T, root string, files []string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte("test content"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
}

func TestScanBundles(t *testing.T) {
	// Layout mirrors a per-animal data folder: bundles at the top level,
	// older sessions in a subfolder, summaries and figures alongside, and
	// a hidden cache that must never be picked up.
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{
		"vgat24_2024-03-01_task-day01.sdb",
		"vgat24_2024-03-02_task-day02.sdb",
		"vgat24_2024-03-01_task-day01_summary.txt",
		"Archive.SDB",
		"old/vgat24_2023-12-01_task-day01.sdb",
		"old/calibration.csv",
		"summary/rois_vgat24_01.png",
		".cache/cached.sdb",
	})

	tests := []struct {
		name          string
		recursive     bool
		wantFileNames []string
	}{
		{
			name:      "non-recursive",
			recursive: false,
			wantFileNames: []string{
				"Archive.SDB",
				"vgat24_2024-03-01_task-day01.sdb",
				"vgat24_2024-03-02_task-day02.sdb",
			},
		},
		{
			name:      "recursive",
			recursive: true,
			wantFileNames: []string{
				"Archive.SDB",
				"vgat24_2023-12-01_task-day01.sdb",
				"vgat24_2024-03-01_task-day01.sdb",
				"vgat24_2024-03-02_task-day02.sdb",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ScanBundles(tmpDir, tt.recursive)
			if err != nil {
				t.Fatalf("ScanBundles() error = %v", err)
			}
			if result == nil {
				t.Fatal("ScanBundles() returned nil result")
			}
			if len(result.Errors) != 0 {
				t.Errorf("ScanBundles() errors count = %d, want 0", len(result.Errors))
				for _, e := range result.Errors {
					t.Logf("  error: %v", e)
				}
			}

			gotFileNames := make([]string, len(result.Files))
			for i, path := range result.Files {
				gotFileNames[i] = filepath.Base(path)
			}

			if len(gotFileNames) != len(tt.wantFileNames) {
				t.Fatalf("ScanBundles() file count = %d, want %d\ngot: %v\nwant: %v",
					len(gotFileNames), len(tt.wantFileNames), gotFileNames, tt.wantFileNames)
			}
			for i, want := range tt.wantFileNames {
				if gotFileNames[i] != want {
					t.Errorf("files[%d] = %s, want %s", i, gotFileNames[i], want)
				}
			}
		})
	}
}

func TestScanBundles_AbsolutePaths(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"vgat24_2024-03-01_task-day01.sdb"})

	result, err := ScanBundles(tmpDir, false)
	if err != nil {
		t.Fatalf("ScanBundles() error = %v", err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("expected 1 bundle, got %d", len(result.Files))
	}

	if !filepath.IsAbs(result.Files[0]) {
		t.Errorf("ScanBundles() returned relative path: %s", result.Files[0])
	}
	if _, err := os.Stat(result.Files[0]); err != nil {
		t.Errorf("bundle at returned path does not exist: %v", err)
	}
}

func TestScanBundles_SortedOutput(t *testing.T) {
	tmpDir := t.TempDir()

	// Create bundles in non-alphabetical order
	writeTree(t, tmpDir, []string{
		"vgat24_2024-03-04_task-day04.sdb",
		"vgat24_2024-03-01_task-day01.sdb",
		"vgat24_2024-03-03_task-day03.sdb",
		"vgat24_2024-03-02_task-day02.sdb",
	})

	result, err := ScanBundles(tmpDir, false)
	if err != nil {
		t.Fatalf("ScanBundles() error = %v", err)
	}

	wantNames := []string{
		"vgat24_2024-03-01_task-day01.sdb",
		"vgat24_2024-03-02_task-day02.sdb",
		"vgat24_2024-03-03_task-day03.sdb",
		"vgat24_2024-03-04_task-day04.sdb",
	}
	if len(result.Files) != len(wantNames) {
		t.Fatalf("expected %d bundles, got %d", len(wantNames), len(result.Files))
	}
	for i, want := range wantNames {
		if got := filepath.Base(result.Files[i]); got != want {
			t.Errorf("files[%d] = %s, want %s", i, got, want)
		}
	}
}

func TestScanBundles_Errors(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func() string
		wantErr   string
	}{
		{
			name: "non-existent directory",
			setupFunc: func() string {
				return "/nonexistent/directory/path"
			},
			wantErr: "failed to access directory",
		},
		{
			name: "path is a file not directory",
			setupFunc: func() string {
				tmpDir := t.TempDir()
				filePath := filepath.Join(tmpDir, "bundle.sdb")
				if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
					t.Fatalf("failed to create file: %v", err)
				}
				return filePath
			},
			wantErr: "path is not a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ScanBundles(tt.setupFunc(), false)

			if err == nil {
				t.Fatalf("ScanBundles() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ScanBundles() error = %v, want error containing %q", err, tt.wantErr)
			}
			if result != nil {
				t.Errorf("ScanBundles() expected nil result on error, got %+v", result)
			}
		})
	}
}

func TestScanBundles_EmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	result, err := ScanBundles(tmpDir, true)
	if err != nil {
		t.Fatalf("ScanBundles() error = %v", err)
	}
	if len(result.Files) != 0 {
		t.Errorf("ScanBundles() on empty dir returned %d files, want 0", len(result.Files))
	}
	if len(result.Errors) != 0 {
		t.Errorf("ScanBundles() on empty dir returned %d errors, want 0", len(result.Errors))
	}
}

func TestScanBundles_NoBundles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"summary.txt", "figure.png", "notes.md"})

	result, err := ScanBundles(tmpDir, false)
	if err != nil {
		t.Fatalf("ScanBundles() error = %v", err)
	}
	if len(result.Files) != 0 {
		t.Errorf("ScanBundles() with no bundles returned %d files, want 0", len(result.Files))
	}
}
