package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for generation run identifiers.
	FieldRunID = "run_id"
	// FieldParticipant is the standardized structured logging key for participant identifiers.
	FieldParticipant = "participant"
	// FieldSession is the standardized structured logging key for session identifiers.
	FieldSession = "session"
	// FieldCohort is the standardized structured logging key for cohort names.
	FieldCohort = "cohort"
	// FieldGamma is the standardized structured logging key for sampled gamma exponents.
	FieldGamma = "gamma"
	// FieldOutput is the standardized structured logging key for output file paths.
	FieldOutput = "output"
)

type ctxKey int

const (
	ctxKeyRunID ctxKey = iota
	ctxKeyParticipant
	ctxKeySession
)

// WithRunID stores a run identifier on the context for log enrichment.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ctxKeyRunID, runID)
}

// WithVisit stores participant and session identifiers on the context.
func WithVisit(ctx context.Context, participant, session string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyParticipant, participant)
	return context.WithValue(ctx, ctxKeySession, session)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := ctx.Value(ctxKeyRunID).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if participant, ok := ctx.Value(ctxKeyParticipant).(string); ok && participant != "" {
		fields = append(fields, slog.String(FieldParticipant, participant))
	}
	if session, ok := ctx.Value(ctxKeySession).(string); ok && session != "" {
		fields = append(fields, slog.String(FieldSession, session))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
