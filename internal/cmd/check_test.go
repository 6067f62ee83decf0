package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sgtlab/sessqc/internal/container/containertest"
	"github.com/sgtlab/sessqc/internal/session"
)

func TestCheckCommand_WritesSummary(t *testing.T) {
	dir := chdirTemp(t)

	bundle := filepath.Join(dir, "vgat24_2021-01-05_task-day1.sdb")
	containertest.WriteMinimalBundle(t, bundle, "vgat24").Done()

	output, err := execute(t, "check", bundle)
	if err != nil {
		t.Fatalf("check returned error: %v\noutput: %s", err, output)
	}

	summaryPath := strings.TrimSuffix(bundle, ".sdb") + "_summary.txt"
	data, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatalf("summary file not written: %v", err)
	}
	if !strings.Contains(string(data), "ROIS summary") {
		t.Errorf("summary should contain the ROIS block, got: %s", data)
	}
	if !strings.Contains(string(data), "DAQ summary") {
		t.Errorf("summary should contain the DAQ block, got: %s", data)
	}

	if !strings.Contains(output, "saved "+summaryPath) {
		t.Errorf("output should report the saved summary, got: %s", output)
	}
	if !strings.Contains(output, "summarized: 1") || !strings.Contains(output, "failed: 0") {
		t.Errorf("output should close with the batch summary, got: %s", output)
	}
}

func TestCheckCommand_BatchContinuesAfterFailure(t *testing.T) {
	dir := chdirTemp(t)

	good := filepath.Join(dir, "vgat24_2021-01-05_task-day1.sdb")
	containertest.WriteMinimalBundle(t, good, "vgat24").Done()
	missing := filepath.Join(dir, "vgat24_2021-01-06_task-day2.sdb")

	output, err := execute(t, "check", missing, good)
	if err == nil {
		t.Fatal("check should fail when a bundle cannot be read")
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("error should count the failed bundles, got: %v", err)
	}

	// The remaining bundle is still summarized
	if _, statErr := os.Stat(strings.TrimSuffix(good, ".sdb") + "_summary.txt"); statErr != nil {
		t.Errorf("remaining bundle should still be checked: %v", statErr)
	}
	if !strings.Contains(output, "failed: 1") {
		t.Errorf("batch summary should report the failure, got: %s", output)
	}
}

func TestCheckCommand_ConflictingKindFlags(t *testing.T) {
	chdirTemp(t)

	_, err := execute(t, "check", "--resting", "--sensory", "whatever.sdb")
	if !errors.Is(err, session.ErrKindConflict) {
		t.Errorf("expected ErrKindConflict, got: %v", err)
	}
}

func TestCheckCommand_OutRequiresSingleBundle(t *testing.T) {
	chdirTemp(t)

	_, err := execute(t, "check", "--out", "qc.txt", "a.sdb", "b.sdb")
	if err == nil || !strings.Contains(err.Error(), "--out") {
		t.Errorf("expected --out arity error, got: %v", err)
	}
}

func TestCheckCommand_ExplicitOutPath(t *testing.T) {
	dir := chdirTemp(t)

	bundle := filepath.Join(dir, "vgat24_2021-01-05_task-day1.sdb")
	containertest.WriteMinimalBundle(t, bundle, "vgat24").Done()
	outPath := filepath.Join(dir, "qc.txt")

	if _, err := execute(t, "check", "--out", outPath, bundle); err != nil {
		t.Fatalf("check returned error: %v", err)
	}

	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("summary not written to --out path: %v", err)
	}
}

func TestCheckCommand_XLSXSupplement(t *testing.T) {
	dir := chdirTemp(t)

	bundle := filepath.Join(dir, "vgat24_2021-01-05_task-day1.sdb")
	containertest.WriteMinimalBundle(t, bundle, "vgat24").Done()

	if _, err := execute(t, "check", "--xlsx", bundle); err != nil {
		t.Fatalf("check returned error: %v", err)
	}

	if _, err := os.Stat(strings.TrimSuffix(bundle, ".sdb") + "_summary.xlsx"); err != nil {
		t.Errorf("xlsx workbook not written: %v", err)
	}
}

func TestCheckCommand_NoArgs(t *testing.T) {
	_, err := execute(t, "check")
	if err == nil {
		t.Error("check should require at least one bundle argument")
	}
}
