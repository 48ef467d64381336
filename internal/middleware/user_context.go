package middleware

import "context"

type ctxKey int

const userIDCtxKey ctxKey = iota

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserID returns the id of the authenticated user the request belongs to.
func UserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDCtxKey).(int64)
	return userID, ok && userID > 0
}
