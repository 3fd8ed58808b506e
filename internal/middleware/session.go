// AngelaMos | 2026
// session.go

package middleware

import (
	"context"
	"slices"
	"time"
)

type contextKey string

const (
	sessionKey   contextKey = "session"
	requestIDKey contextKey = "request_id"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Capability string

const (
	CapPlatformStats   Capability = "platform:stats"
	CapManageUsers     Capability = "users:manage"
	CapModerateContent Capability = "content:moderate"
)

var roleCapabilities = map[string][]Capability{
	RoleUser:  nil,
	RoleAdmin: {CapPlatformStats, CapManageUsers, CapModerateContent},
}

// Session is the verified identity attached to an authenticated request.
// Role is read from the database at verification time, not from the token.
type Session struct {
	UserID    string
	Username  string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

func (s *Session) Can(c Capability) bool {
	if s == nil {
		return false
	}
	return slices.Contains(roleCapabilities[s.Role], c)
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func GetSession(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKey).(*Session); ok {
		return s
	}
	return nil
}

func GetUserID(ctx context.Context) string {
	if s := GetSession(ctx); s != nil {
		return s.UserID
	}
	return ""
}
