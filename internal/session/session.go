package session

import "errors"

// Kind classifies a session by its experimental protocol. The kind is chosen
// by the caller when loading a bundle, never inferred from the bundle itself.
type Kind int

const (
	// Task sessions carry trials, acquisition channels, tracking and ROIs.
	Task Kind = iota
	// Resting sessions have no trial structure.
	Resting
	// Sensory sessions carry trials and ROIs only.
	Sensory
)

// String returns the protocol name used in logs and errors.
func (k Kind) String() string {
	switch k {
	case Task:
		return "task"
	case Resting:
		return "resting-state"
	case Sensory:
		return "sensory-stim"
	default:
		return "unknown"
	}
}

// ErrKindConflict is returned when a caller requests both the resting and
// the sensory protocol for one session.
var ErrKindConflict = errors.New("session cannot be both resting-state and sensory-stim")

// KindFromFlags maps the two caller-supplied protocol flags to a Kind.
func KindFromFlags(resting, sensory bool) (Kind, error) {
	switch {
	case resting && sensory:
		return Task, ErrKindConflict
	case resting:
		return Resting, nil
	case sensory:
		return Sensory, nil
	default:
		return Task, nil
	}
}

// Canonical field names resolvable through Session.Table.
const (
	FieldROIs         = "rois"
	FieldDAQ          = "daq"
	FieldBodyTracking = "body_video_tracking"
	FieldFaceTracking = "face_video_tracking"
	FieldEyeTracking  = "eye_video_tracking"
	FieldPupil        = "pupil_tracking"
	FieldTrials       = "trials"
)

// validFields fixes which fields exist for each session kind. Fields outside
// the kind's set resolve as absent even if a table was somehow populated.
var validFields = map[Kind]map[string]bool{
	Task: {
		FieldTrials:       true,
		FieldDAQ:          true,
		FieldBodyTracking: true,
		FieldFaceTracking: true,
		FieldEyeTracking:  true,
		FieldPupil:        true,
		FieldROIs:         true,
	},
	Resting: {
		FieldDAQ:          true,
		FieldBodyTracking: true,
		FieldFaceTracking: true,
		FieldEyeTracking:  true,
		FieldPupil:        true,
		FieldROIs:         true,
	},
	Sensory: {
		FieldTrials: true,
		FieldROIs:   true,
	},
}

// Timebases holds the clock vectors the session's data products are sampled
// on, in seconds from session start. DAQ and Videos are nil for downsampled
// loads; Videos is nil when the session recorded no video stream.
type Timebases struct {
	Imaging []float64
	DAQ     []float64
	Videos  []float64
}

// Session is one fully loaded session bundle. Optional products the bundle
// does not carry are nil. ROIs is set for every successfully loaded session.
type Session struct {
	Kind Kind
	Path string // source bundle path

	Meta     Metadata
	Timebase Timebases

	Trials       *Table
	DAQ          *Table
	BodyTracking *Table
	FaceTracking *Table
	EyeTracking  *Table
	Pupil        *Table

	ROIs            *Table
	ROIDescriptions map[string]string
}

// Table resolves a canonical field name to its table. The second return is
// false when the field is absent, or not defined for this session's kind.
func (s *Session) Table(field string) (*Table, bool) {
	if !validFields[s.Kind][field] {
		return nil, false
	}

	var tab *Table
	switch field {
	case FieldROIs:
		tab = s.ROIs
	case FieldDAQ:
		tab = s.DAQ
	case FieldBodyTracking:
		tab = s.BodyTracking
	case FieldFaceTracking:
		tab = s.FaceTracking
	case FieldEyeTracking:
		tab = s.EyeTracking
	case FieldPupil:
		tab = s.Pupil
	case FieldTrials:
		tab = s.Trials
	}
	if tab == nil {
		return nil, false
	}
	return tab, true
}
