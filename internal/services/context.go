package services

import "context"

type contextKey string

const (
	roleIDKey    contextKey = "role_id"
	taIDKey      contextKey = "ta_id"
	requestIDKey contextKey = "request_id"
)

// WithRoleID annotates context with the role whose pipeline is being edited.
func WithRoleID(ctx context.Context, roleID string) context.Context {
	if roleID == "" {
		return ctx
	}
	return context.WithValue(ctx, roleIDKey, roleID)
}

// RoleIDFromContext extracts the role identifier if present.
func RoleIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(roleIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithTAID annotates context with the talent-acquisition staff identifier.
func WithTAID(ctx context.Context, taID string) context.Context {
	if taID == "" {
		return ctx
	}
	return context.WithValue(ctx, taIDKey, taID)
}

// TAIDFromContext extracts the TA identifier if present.
func TAIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(taIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(requestIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}
