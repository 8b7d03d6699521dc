package logging

import (
	"context"
	"log/slog"

	"talentpipe/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRoleID is the standardized structured logging key for role identifiers.
	FieldRoleID = "role_id"
	// FieldTAID is the standardized structured logging key for TA identifiers.
	FieldTAID = "ta_id"
	// FieldAssignmentID is the standardized structured logging key for assignment identifiers.
	FieldAssignmentID = "assignment_id"
	// FieldStageID is the standardized structured logging key for pipeline stage identifiers.
	FieldStageID = "stage_id"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if roleID, ok := services.RoleIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRoleID, roleID))
	}
	if taID, ok := services.TAIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldTAID, taID))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
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
