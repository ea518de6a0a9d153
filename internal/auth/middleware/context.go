package auth

import "context"

type ctxKey string

const (
	ctxKeySub  ctxKey = "sub"
	ctxKeyName ctxKey = "name"
)

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySub); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithDisplayName carries the learner's display name, snapshotted into
// certificates at issuance.
func WithDisplayName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxKeyName, name)
}

func DisplayNameFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeyName); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
