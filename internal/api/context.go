package api

import (
	"context"

	"frontdesk/pkg/session"
)

type ctxKey string

const ctxKeySession ctxKey = "session"

func WithSession(ctx context.Context, v *session.Verified) context.Context {
	return context.WithValue(ctx, ctxKeySession, v)
}

func SessionFromContext(ctx context.Context) *session.Verified {
	v := ctx.Value(ctxKeySession)
	if v == nil {
		return nil
	}
	s, _ := v.(*session.Verified)
	return s
}
