package container

import (
	"fmt"
	"strings"

	"github.com/sgtlab/sessqc/internal/session"
)

// acquisitionExclude names the products enumerated alongside acquisition
// channels that are never part of the behavioral table.
var acquisitionExclude = map[string]bool{
	"eye_position":   true,
	"pupil_tracking": true,
	"trials":         true,
}

// channelKinds fixes the storage type of channels with known digital or
// state encodings, keyed by sanitized column name. Channels outside this
// table stay float64. The mapping reflects the recording rig's wiring and
// is applied to non-sensory sessions only.
var channelKinds = map[string]session.ColumnKind{
	"reward":      session.Bool,
	"state_lever": session.Bool,
	"tone":        session.Bool,
	"state_task":  session.Int,
}

// sanitizeChannel converts an exporter product name into a column
// identifier: lower-cased, spaces and hyphens to underscores, periods and
// the exporter's "_ds" marker dropped.
func sanitizeChannel(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "_ds", "")
	return s
}

// ReadAcquisition builds the behavioral channel table from the downsampled
// module or the raw acquisition group. Keypoint products and the fixed
// exclusion set are skipped; remaining names are sanitized; known digital
// and state channels are coerced unless the session is sensory-stim.
func (b *Bundle) ReadAcquisition(downsampled, sensory bool) (*session.Table, error) {
	module := moduleAcquisition
	if downsampled {
		module = moduleDownsampled
	}

	names, err := b.seriesNames(module)
	if err != nil {
		return nil, err
	}

	tab := session.NewTable()
	for _, name := range names {
		if strings.Contains(name, "video_keypoints") || acquisitionExclude[name] {
			continue
		}
		s, err := b.series(module, name)
		if err != nil {
			return nil, err
		}

		col := sanitizeChannel(name)
		kind := session.Float
		if !sensory {
			if k, ok := channelKinds[col]; ok {
				kind = k
			}
		}

		switch kind {
		case session.Bool:
			err = tab.AddBool(col, thresholdBool(s.data))
		case session.Int:
			err = tab.AddInt(col, truncateInt16(s.data))
		default:
			err = tab.AddFloat(col, s.data)
		}
		if err != nil {
			return nil, fmt.Errorf("add channel %s: %w", col, err)
		}
	}
	return tab, nil
}

// thresholdBool maps samples to on/off with truthy defined as value > 0.
func thresholdBool(vals []float64) []bool {
	out := make([]bool, len(vals))
	for i, v := range vals {
		out[i] = v > 0
	}
	return out
}

// truncateInt16 narrows state-code samples the way the exporter recorded
// them, truncating toward zero.
func truncateInt16(vals []float64) []int16 {
	out := make([]int16, len(vals))
	for i, v := range vals {
		out[i] = int16(v)
	}
	return out
}
