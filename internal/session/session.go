// Package session carries the caller's tenant, user, locale and clock
// through a request. Core computations take what they need from a Session
// explicitly instead of reading process-wide state.
package session

import (
	"context"
	"time"

	"github.com/flowaudit/audit-engine/internal/format"
)

// Session identifies who is acting, in which locale and at what time.
type Session struct {
	TenantID string
	UserID   string
	Locale   string
	// Clock returns the current time. Nil means time.Now.
	Clock func() time.Time
}

// Now returns the session's current time in UTC.
func (s Session) Now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}

// Formatter returns a formatter for the session locale.
func (s Session) Formatter() *format.Formatter {
	return format.ForLocale(s.Locale)
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, or an anonymous session.
func FromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(ctxKey{}).(Session); ok {
		return s
	}
	return Session{}
}
