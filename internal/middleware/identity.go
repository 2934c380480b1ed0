package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/user"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

// SessionCookie is the cookie consulted when no Authorization header is sent.
const SessionCookie = "session"

// UserLookup resolves a user id to a stored member.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (user.User, error)
}

// Claims is the payload of a session token.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 session token whose subject is the user id.
func IssueToken(secret string, u user.User, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("session secret is not configured")
	}
	now := time.Now()
	claims := Claims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// IdentityMiddleware attaches the caller's user id to the request context
// when a valid session token names an existing user. Requests without a
// usable token proceed anonymously; nothing is ever rejected here.
type IdentityMiddleware struct {
	secret []byte
	users  UserLookup
	log    *logger.Logger
}

// NewIdentityMiddleware creates the middleware. An empty secret disables
// token parsing so every request is anonymous.
func NewIdentityMiddleware(secret string, users UserLookup, log *logger.Logger) *IdentityMiddleware {
	if log == nil {
		log = logger.NewDefault("identity")
	}
	return &IdentityMiddleware{secret: []byte(secret), users: users, log: log}
}

// Handler returns the identity middleware handler
func (m *IdentityMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r)
		if raw == "" || len(m.secret) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := m.resolve(r.Context(), raw)
		if err != nil {
			m.log.WithField("trace_id", GetTraceID(r.Context())).
				WithError(err).
				Debug("ignoring session token")
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func (m *IdentityMiddleware) resolve(ctx context.Context, raw string) (int64, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, errors.New("invalid token")
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	if m.users != nil {
		if _, err := m.users.GetUser(ctx, id); err != nil {
			return 0, fmt.Errorf("lookup user %d: %w", id, err)
		}
	}
	return id, nil
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}
