// Package session defines the in-memory representation of a recorded
// experimental session: identity metadata, clock timebases, and the tabular
// data products (trials, acquisition channels, keypoint tracking, pupil
// metrics, ROI fluorescence) extracted from a session bundle.
//
// Values are fully materialized at load time and never mutated afterwards.
package session

import "errors"

// Metadata identifies a single recorded session and its subject.
type Metadata struct {
	Identifier  string // container UUID assigned by the exporter
	SessionID   string // lab-assigned session identifier
	Description string // free-text session description
	Notes       string // free-text session notes (Markdown)
	SubjectID   string // animal identifier
	SubjectDoB  string // date of birth, normalized to YYYY-MM-DD
	SubjectAge  string // age descriptor as recorded (e.g. "P120D")
	SubjectSex  string
}

// Validate checks that the fields every bundle is required to carry are set.
func (m *Metadata) Validate() error {
	if m.SessionID == "" {
		return errors.New("session id is required")
	}
	if m.SubjectID == "" {
		return errors.New("subject id is required")
	}
	if m.SubjectDoB == "" {
		return errors.New("subject date of birth is required")
	}
	if m.SubjectAge == "" {
		return errors.New("subject age is required")
	}
	if m.SubjectSex == "" {
		return errors.New("subject sex is required")
	}
	return nil
}
