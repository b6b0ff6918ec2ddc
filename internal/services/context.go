package services

import "context"

type ctxKey string

const userCtxKey ctxKey = "auth_user_id"

// WithUserContext stores the authenticated external user id on ctx.
func WithUserContext(ctx context.Context, externalID string) context.Context {
	return context.WithValue(ctx, userCtxKey, externalID)
}

// UserIDFromContext returns the authenticated external user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userCtxKey).(string)
	return id, ok && id != ""
}
