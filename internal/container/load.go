package container

import (
	"fmt"

	"github.com/sgtlab/sessqc/internal/session"
)

// Logger is the subset of the console logger extraction reports through.
type Logger interface {
	LogDebug(message string)
	LogWarn(message string)
}

// noopLogger discards extraction progress when the caller passes no logger.
type noopLogger struct{}

func (noopLogger) LogDebug(message string) {}
func (noopLogger) LogWarn(message string)  {}

// Options select the record shape and resolution Load materializes.
type Options struct {
	// Downsampled reads the exporter's downsampled products instead of raw.
	Downsampled bool
	// Resting marks the session as resting-state; no trial structure is read.
	Resting bool
	// Sensory marks the session as sensory-stim; only trials and ROIs are read.
	Sensory bool
}

// Load opens the bundle at path, extracts every field valid for the
// requested session kind in a fixed order, and assembles the session record.
// The bundle is closed on every exit path. A missing required product aborts
// the load; absent optional products are logged and left nil.
func Load(path string, opts Options, log Logger) (*session.Session, error) {
	if log == nil {
		log = noopLogger{}
	}

	kind, err := session.KindFromFlags(opts.Resting, opts.Sensory)
	if err != nil {
		return nil, err
	}

	b, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	log.LogDebug(fmt.Sprintf("loading %s session from %s", kind, path))

	sess := &session.Session{Kind: kind, Path: path}

	if sess.Meta, err = b.ReadMetadata(); err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	if sess.Timebase, err = b.ReadTimebases(opts.Downsampled); err != nil {
		return nil, fmt.Errorf("read timebases: %w", err)
	}

	if kind != session.Resting {
		if sess.Trials, err = b.ReadTrials(opts.Downsampled); err != nil {
			return nil, fmt.Errorf("read trials: %w", err)
		}
		if sess.Trials == nil {
			log.LogWarn(fmt.Sprintf("no trial structure in %s", path))
		}
	}

	if kind != session.Sensory {
		if sess.DAQ, err = b.ReadAcquisition(opts.Downsampled, opts.Sensory); err != nil {
			return nil, fmt.Errorf("read acquisition: %w", err)
		}
		if sess.BodyTracking, err = b.ReadTracking(ViewBody, opts.Downsampled); err != nil {
			return nil, fmt.Errorf("read body tracking: %w", err)
		}
		if sess.FaceTracking, err = b.ReadTracking(ViewFace, opts.Downsampled); err != nil {
			return nil, fmt.Errorf("read face tracking: %w", err)
		}
		if sess.EyeTracking, err = b.ReadTracking(ViewEye, opts.Downsampled); err != nil {
			return nil, fmt.Errorf("read eye tracking: %w", err)
		}
		if sess.Pupil, err = b.ReadTracking(ViewPupil, opts.Downsampled); err != nil {
			return nil, fmt.Errorf("read pupil tracking: %w", err)
		}
		for _, view := range []struct {
			name string
			tab  *session.Table
		}{
			{ViewBody, sess.BodyTracking},
			{ViewFace, sess.FaceTracking},
			{ViewEye, sess.EyeTracking},
			{ViewPupil, sess.Pupil},
		} {
			if view.tab == nil {
				log.LogWarn(fmt.Sprintf("no %s tracking in %s", view.name, path))
			}
		}
	}

	if sess.ROIs, sess.ROIDescriptions, err = b.ReadROIs(); err != nil {
		return nil, fmt.Errorf("read rois: %w", err)
	}

	return sess, nil
}
