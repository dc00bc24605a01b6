// Package actorctx carries the authenticated caller's id on a context.Context
// so layers below HTTP can attribute changes without depending on gin.
package actorctx

import "context"

type ctxKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKey{}).(string)

	return v, ok && v != ""
}

// LogAttrs returns the actor attribute for a log line, or nothing for
// anonymous calls.
func LogAttrs(ctx context.Context) []any {
	if id, ok := UserIDFrom(ctx); ok {
		return []any{"actor_id", id}
	}
	return nil
}
