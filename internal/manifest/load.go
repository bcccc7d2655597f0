package manifest

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"capsgen/internal/caps"
)

// LoadVisits resolves the participant/session list for a run. When tsvPath
// is empty every visit found in the cohort CAPS trees is used. Otherwise the
// TSV must carry participant_id and session_id columns, plus a cohort column
// in multi-cohort mode.
func LoadVisits(tsvPath string, cohorts map[string]string, multiCohort bool) ([]caps.Visit, error) {
	if strings.TrimSpace(tsvPath) == "" {
		return discoverAll(cohorts)
	}

	file, err := os.Open(tsvPath)
	if err != nil {
		return nil, fmt.Errorf("open participants TSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse participants TSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("participants TSV %q has no data rows", tsvPath)
	}

	participantIdx, sessionIdx, cohortIdx := -1, -1, -1
	for i, column := range records[0] {
		switch strings.TrimSpace(column) {
		case "participant_id":
			participantIdx = i
		case "session_id":
			sessionIdx = i
		case "cohort":
			cohortIdx = i
		}
	}
	if participantIdx < 0 || sessionIdx < 0 {
		return nil, fmt.Errorf("participants TSV must have participant_id and session_id columns, got %v", records[0])
	}
	if multiCohort && cohortIdx < 0 {
		return nil, fmt.Errorf("participants TSV must have a cohort column in multi-cohort mode")
	}

	visits := make([]caps.Visit, 0, len(records)-1)
	seen := make(map[caps.Visit]struct{}, len(records)-1)
	for line, record := range records[1:] {
		visit := caps.Visit{
			Participant: strings.TrimSpace(record[participantIdx]),
			Session:     strings.TrimSpace(record[sessionIdx]),
			Cohort:      caps.DefaultCohort,
		}
		if multiCohort {
			visit.Cohort = strings.TrimSpace(record[cohortIdx])
		}
		if visit.Participant == "" || visit.Session == "" {
			return nil, fmt.Errorf("participants TSV row %d has an empty participant_id or session_id", line+2)
		}
		if _, ok := cohorts[visit.Cohort]; !ok {
			return nil, fmt.Errorf("participants TSV row %d references unknown cohort %q", line+2, visit.Cohort)
		}
		if _, ok := seen[visit]; ok {
			return nil, fmt.Errorf("participants TSV lists %s %s more than once", visit.Participant, visit.Session)
		}
		seen[visit] = struct{}{}
		visits = append(visits, visit)
	}
	return visits, nil
}

func discoverAll(cohorts map[string]string) ([]caps.Visit, error) {
	names := make([]string, 0, len(cohorts))
	for name := range cohorts {
		names = append(names, name)
	}
	sort.Strings(names)

	var visits []caps.Visit
	for _, name := range names {
		found, err := caps.DiscoverVisits(cohorts[name], name)
		if err != nil {
			return nil, fmt.Errorf("discover visits in cohort %q: %w", name, err)
		}
		visits = append(visits, found...)
	}
	if len(visits) == 0 {
		return nil, fmt.Errorf("no participant sessions found in the source CAPS tree")
	}
	return visits, nil
}
