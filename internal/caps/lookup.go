package caps

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrImageNotFound reports that no file matched the requested pattern.
	ErrImageNotFound = errors.New("image not found")
	// ErrAmbiguousImage reports that more than one file matched the pattern.
	ErrAmbiguousImage = errors.New("ambiguous image lookup")
)

// FindImage locates exactly one image under
// <capsDir>/subjects/<participant>/<session>/ whose filename matches the
// file type pattern. The search descends through pipeline subdirectories.
func FindImage(capsDir string, participant, session string, ft FileType) (string, error) {
	sessionDir := filepath.Join(capsDir, "subjects", participant, session)
	if _, err := os.Stat(sessionDir); err != nil {
		return "", fmt.Errorf("%w: %s %s (%s): %s", ErrImageNotFound, participant, session, ft.Description, sessionDir)
	}

	var matches []string
	err := filepath.WalkDir(sessionDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		ok, matchErr := filepath.Match(ft.Pattern, entry.Name())
		if matchErr != nil {
			return fmt.Errorf("match pattern %q: %w", ft.Pattern, matchErr)
		}
		if ok {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("search %s: %w", sessionDir, err)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s %s: no file matching %q under %s",
			ErrImageNotFound, participant, session, ft.Pattern, sessionDir)
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("%w: %s %s: %d files match %q (first: %s)",
			ErrAmbiguousImage, participant, session, len(matches), ft.Pattern, matches[0])
	}
}

// DiscoverVisits enumerates every sub-*/ses-* directory pair under the CAPS
// subjects tree, ordered by participant then session.
func DiscoverVisits(capsDir, cohort string) ([]Visit, error) {
	subjectsDir := filepath.Join(capsDir, "subjects")
	subjects, err := os.ReadDir(subjectsDir)
	if err != nil {
		return nil, fmt.Errorf("read subjects directory: %w", err)
	}

	var visits []Visit
	for _, subject := range subjects {
		if !subject.IsDir() || !strings.HasPrefix(subject.Name(), "sub-") {
			continue
		}
		sessions, err := os.ReadDir(filepath.Join(subjectsDir, subject.Name()))
		if err != nil {
			return nil, fmt.Errorf("read sessions for %s: %w", subject.Name(), err)
		}
		for _, session := range sessions {
			if !session.IsDir() || !strings.HasPrefix(session.Name(), "ses-") {
				continue
			}
			visits = append(visits, Visit{
				Participant: subject.Name(),
				Session:     session.Name(),
				Cohort:      cohort,
			})
		}
	}

	sort.Slice(visits, func(i, j int) bool {
		if visits[i].Participant != visits[j].Participant {
			return visits[i].Participant < visits[j].Participant
		}
		return visits[i].Session < visits[j].Session
	})
	return visits, nil
}
