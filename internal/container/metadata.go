package container

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sgtlab/sessqc/internal/session"
)

// requiredSubjectKeys are the subject fields every bundle must carry.
var requiredSubjectKeys = []string{"subject_id", "date_of_birth", "age", "sex"}

// ReadMetadata reads the session and subject identity fields. All subject
// fields are required; the bundle identifier must be a valid UUID.
func (b *Bundle) ReadMetadata() (session.Metadata, error) {
	meta, err := b.readKV("session_meta")
	if err != nil {
		return session.Metadata{}, err
	}
	subject, err := b.readKV("subject")
	if err != nil {
		return session.Metadata{}, err
	}

	for _, key := range requiredSubjectKeys {
		if subject[key] == "" {
			return session.Metadata{}, &NotFoundError{Path: b.path, Product: "subject " + key}
		}
	}
	if meta["session_id"] == "" {
		return session.Metadata{}, &NotFoundError{Path: b.path, Product: "session_id"}
	}
	if meta["identifier"] == "" {
		return session.Metadata{}, &NotFoundError{Path: b.path, Product: "identifier"}
	}
	if _, err := uuid.Parse(meta["identifier"]); err != nil {
		return session.Metadata{}, fmt.Errorf("invalid bundle identifier %q: %w", meta["identifier"], err)
	}

	dob, err := normalizeDate(subject["date_of_birth"])
	if err != nil {
		return session.Metadata{}, fmt.Errorf("parse subject date_of_birth: %w", err)
	}

	return session.Metadata{
		Identifier:  meta["identifier"],
		SessionID:   meta["session_id"],
		Description: meta["session_description"],
		Notes:       meta["notes"],
		SubjectID:   subject["subject_id"],
		SubjectDoB:  dob,
		SubjectAge:  subject["age"],
		SubjectSex:  subject["sex"],
	}, nil
}

// normalizeDate renders an exporter date as YYYY-MM-DD. Current exports
// write RFC 3339 timestamps; older bundles carry the bare date.
func normalizeDate(value string) (string, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", value)
}
