package generate

import (
	"errors"
	"fmt"
	"strings"

	"capsgen/internal/caps"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrImageCodec    = errors.New("image codec error")
	ErrLocked        = errors.New("output directory locked")
)

// wrapVisit tags an error with participant/session context and a sentinel
// marker so callers can classify the failure.
func wrapVisit(marker error, visit caps.Visit, operation string, err error) error {
	detail := buildDetail(visit, operation)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(visit caps.Visit, operation string) string {
	parts := make([]string, 0, 3)
	if visit.Participant != "" {
		parts = append(parts, visit.Participant)
	}
	if visit.Session != "" {
		parts = append(parts, visit.Session)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if len(parts) == 0 {
		return "generation failure"
	}
	return strings.Join(parts, ": ")
}
