package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

type requestDataKey struct{}

// RequestData carries per-request auth facts extracted by the auth
// middleware; handlers and services read it instead of re-parsing tokens.
type RequestData struct {
	TokenString  string
	RefreshToken string
	UserID       uuid.UUID
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey{})
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}
