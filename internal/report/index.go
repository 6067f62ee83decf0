package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// fileMatcher parses the lab's session file naming convention:
// <subject>_<date>_<task|resting-state|sensory-stim>-day<N>.
var fileMatcher = regexp.MustCompile(`^([a-zA-Z0-9-]+)_([0-9-]+)_(task|resting-state|sensory-stim)-day([0-9]+)`)

// typeOrder ranks session types for sorting: task days first, then
// resting-state, then sensory-stim.
var typeOrder = []string{"task", "resting-state", "sensory-stim"}

// ErrBadName reports a session file that does not follow the naming
// convention.
var ErrBadName = errors.New("file name does not match session naming convention")

// SessionIndex is the sort key recovered from a session file name.
type SessionIndex struct {
	Subject  string
	Date     string
	TypeRank int
	Day      int
}

// IndexSessionFile parses the base name of path into its sort key. Names
// outside the convention return an error wrapping ErrBadName.
func IndexSessionFile(path string) (SessionIndex, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m := fileMatcher.FindStringSubmatch(stem)
	if m == nil {
		return SessionIndex{}, fmt.Errorf("%w: %q", ErrBadName, stem)
	}

	rank := 0
	for i, typ := range typeOrder {
		if typ == m[3] {
			rank = i
			break
		}
	}
	day, err := strconv.Atoi(m[4])
	if err != nil {
		return SessionIndex{}, fmt.Errorf("%w: %q", ErrBadName, stem)
	}

	return SessionIndex{Subject: m[1], Date: m[2], TypeRank: rank, Day: day}, nil
}

// Less orders indexes by subject, date, session type rank, then day.
func (a SessionIndex) Less(b SessionIndex) bool {
	if a.Subject != b.Subject {
		return a.Subject < b.Subject
	}
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	if a.TypeRank != b.TypeRank {
		return a.TypeRank < b.TypeRank
	}
	return a.Day < b.Day
}

// SortSessionFiles sorts bundle paths in place by their session index. One
// path outside the naming convention fails the whole sort.
func SortSessionFiles(paths []string) error {
	keys := make(map[string]SessionIndex, len(paths))
	for _, p := range paths {
		idx, err := IndexSessionFile(p)
		if err != nil {
			return err
		}
		keys[p] = idx
	}

	sort.Slice(paths, func(i, j int) bool {
		return keys[paths[i]].Less(keys[paths[j]])
	})
	return nil
}
