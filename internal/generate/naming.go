package generate

import (
	"fmt"
	"strings"
)

// contrastPrefix marks generated subjects so they cannot collide with the
// source cohort's participant identifiers.
const contrastPrefix = "sub-CONT"

// diagnosisLabel is the diagnosis written for every generated row.
const diagnosisLabel = "contrast"

// contrastParticipantID maps a source participant (sub-ADNI001) to its
// synthetic counterpart (sub-CONTADNI001).
func contrastParticipantID(participant string) string {
	_, id, found := strings.Cut(participant, "-")
	if !found || id == "" {
		id = participant
	}
	return contrastPrefix + id
}

// outputFileName rebuilds the image filename for the synthetic subject by
// replacing the sub- and ses- entities and keeping the trailing pattern.
func outputFileName(contrastParticipant, session, inputName string) (string, error) {
	parts := strings.Split(inputName, "_")
	if len(parts) < 3 {
		return "", fmt.Errorf("filename %q does not follow the sub-X_ses-Y_<pattern> convention", inputName)
	}
	suffix := strings.Join(parts[2:], "_")
	return contrastParticipant + "_" + session + "_" + suffix, nil
}
