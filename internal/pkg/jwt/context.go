package jwt

import "context"

type claimsKey struct{}

// NewContext returns a copy of ctx carrying verified claims.
func NewContext(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, clm)
}

// FromContext returns the claims stored by NewContext.
func FromContext(ctx context.Context) (Claims, bool) {
	clm, ok := ctx.Value(claimsKey{}).(Claims)
	return clm, ok
}
