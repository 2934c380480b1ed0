package httpapi

import "github.com/innovatorsofhonour/innovators/internal/middleware"

type options struct {
	maxBodyBytes  int64
	sessionSecret string
	corsOrigins   []string
	limiter       middleware.Limiter
	rateLimit     int
	audit         AuditSink
}

// Option customises the handler returned by NewHandler.
type Option func(*options)

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithSessionSecret enables session token verification.
func WithSessionSecret(secret string) Option {
	return func(o *options) { o.sessionSecret = secret }
}

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins []string) Option {
	return func(o *options) { o.corsOrigins = origins }
}

// WithRateLimiter limits POST requests per client. limit is the advertised
// per-second budget.
func WithRateLimiter(limiter middleware.Limiter, limit int) Option {
	return func(o *options) {
		o.limiter = limiter
		o.rateLimit = limit
	}
}

// WithAuditSink records every mutation request.
func WithAuditSink(sink AuditSink) Option {
	return func(o *options) { o.audit = sink }
}
