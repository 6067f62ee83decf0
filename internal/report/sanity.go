package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/sgtlab/sessqc/internal/container"
	"github.com/sgtlab/sessqc/internal/filelock"
	"github.com/sgtlab/sessqc/internal/fileutil"
	"github.com/sgtlab/sessqc/internal/session"
)

// CheckOptions configure a single-bundle sanity check.
type CheckOptions struct {
	// Resting and Sensory mark the session's protocol; setting both is an
	// error surfaced by the load.
	Resting bool
	Sensory bool
	// OutPath overrides the default summary path derived from the bundle path.
	OutPath string
	// XLSX also writes the summaries as a workbook next to the text file.
	XLSX bool
}

// CheckResult reports what a sanity check produced.
type CheckResult struct {
	OutPath  string
	XLSXPath string
	Fields   int // fields summarized and written
	Missing  int // fields the session does not carry
}

// summaryFields returns the fields a sanity check reports for the session
// kind, in block order.
func summaryFields(kind session.Kind) []string {
	if kind == session.Sensory {
		return []string{session.FieldROIs}
	}
	return []string{
		session.FieldROIs,
		session.FieldDAQ,
		session.FieldBodyTracking,
		session.FieldFaceTracking,
		session.FieldEyeTracking,
		session.FieldPupil,
	}
}

// SanityCheck loads one bundle downsampled, summarizes every field reported
// for its session kind, and writes the labeled blocks to the summary file.
// Fields the session does not carry are warned about and omitted from the
// output. The default output path replaces the bundle extension with
// _summary.txt.
func SanityCheck(path string, opts CheckOptions, log Logger) (*CheckResult, error) {
	if log == nil {
		log = noopLogger{}
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("input bundle: %w", err)
	}

	outPath := opts.OutPath
	if outPath == "" {
		outPath = strings.TrimSuffix(path, fileutil.BundleExt) + "_summary.txt"
	}

	sess, err := container.Load(path, container.Options{
		Downsampled: true,
		Resting:     opts.Resting,
		Sensory:     opts.Sensory,
	}, log)
	if err != nil {
		return nil, err
	}

	res := &CheckResult{OutPath: outPath}
	var text strings.Builder
	var sheets []FieldSummary
	for _, field := range summaryFields(sess.Kind) {
		s := StatSummary(sess, field, log)
		if s == nil {
			res.Missing++
			continue
		}
		text.WriteString(fieldBlock(field, s))
		sheets = append(sheets, FieldSummary{Field: field, Summary: s})
		res.Fields++
	}

	if err := filelock.LockAndWrite(outPath, []byte(text.String())); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	log.LogInfo(fmt.Sprintf("saved %s", outPath))

	if opts.XLSX {
		xlsxPath := strings.TrimSuffix(outPath, ".txt") + ".xlsx"
		if err := WriteXLSX(sheets, xlsxPath); err != nil {
			return nil, fmt.Errorf("write workbook: %w", err)
		}
		res.XLSXPath = xlsxPath
		log.LogInfo(fmt.Sprintf("saved %s", xlsxPath))
	}

	return res, nil
}
