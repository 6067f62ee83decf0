package container

import "github.com/sgtlab/sessqc/internal/session"

// Anchor streams each clock's timestamps are read from, fixed by the
// exporter's conventions.
const (
	imagingAnchor = "widefield_blue"
	daqAnchor     = "humidity_raw"
	videoAnchor   = "body_video"
)

// ReadTimebases reads the session's clock vectors. Downsampled loads carry
// only the imaging clock. The video clock is optional; the imaging and DAQ
// anchors are required.
func (b *Bundle) ReadTimebases(downsampled bool) (session.Timebases, error) {
	imaging, err := b.requireTimestamps(moduleAcquisition, imagingAnchor)
	if err != nil {
		return session.Timebases{}, err
	}
	if downsampled {
		return session.Timebases{Imaging: imaging}, nil
	}

	daq, err := b.requireTimestamps(moduleAcquisition, daqAnchor)
	if err != nil {
		return session.Timebases{}, err
	}

	tb := session.Timebases{Imaging: imaging, DAQ: daq}

	hasVideo, err := b.hasSeries(moduleAcquisition, videoAnchor)
	if err != nil {
		return session.Timebases{}, err
	}
	if hasVideo {
		videos, err := b.requireTimestamps(moduleAcquisition, videoAnchor)
		if err != nil {
			return session.Timebases{}, err
		}
		tb.Videos = videos
	}
	return tb, nil
}

// requireTimestamps reads a product's timestamp array, treating both a
// missing product and a missing array as required-data failures.
func (b *Bundle) requireTimestamps(module, name string) ([]float64, error) {
	s, err := b.series(module, name)
	if err != nil {
		return nil, err
	}
	if s.timestamps == nil {
		return nil, &NotFoundError{Path: b.path, Product: module + "/" + name + " timestamps"}
	}
	return s.timestamps, nil
}
