package research

import (
	"context"
	"time"
)

// Capability is proof that a caller passed the researcher gate. The zero
// value grants nothing; a granted value can only come from Issuer.Validate.
type Capability struct {
	subject   string
	expiresAt time.Time
}

// Granted reports whether c carries research access.
func (c Capability) Granted() bool { return !c.expiresAt.IsZero() }

// Subject names who the capability was issued to.
func (c Capability) Subject() string { return c.subject }

// ExpiresAt is when the capability stops being accepted.
func (c Capability) ExpiresAt() time.Time { return c.expiresAt }

type contextKey struct{}

// WithCapability returns a context carrying c.
func WithCapability(ctx context.Context, c Capability) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the capability stored in ctx, or the zero value.
func FromContext(ctx context.Context) Capability {
	c, _ := ctx.Value(contextKey{}).(Capability)
	return c
}
