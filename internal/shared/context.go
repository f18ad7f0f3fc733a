package shared

import "context"

type userContextKey struct{}

// WithUser stores the authenticated user id in context.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userContextKey{}, userID)
}

// UserFromContext extracts the user id from context.
func UserFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userContextKey{}).(string)
	return id, ok && id != ""
}
