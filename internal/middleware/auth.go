// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

type TokenVerifier interface {
	VerifyToken(
		ctx context.Context,
		token string,
		requiredRole string,
	) (*Session, error)
}

func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return authenticate(verifier, "")
}

// AuthenticatorWithRole rejects valid tokens whose session role differs
// from role.
func AuthenticatorWithRole(
	verifier TokenVerifier,
	role string,
) func(http.Handler) http.Handler {
	return authenticate(verifier, role)
}

func authenticate(
	verifier TokenVerifier,
	role string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			session, err := verifier.VerifyToken(r.Context(), token, role)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			trace.SpanFromContext(r.Context()).SetAttributes(
				attribute.String("user.id", session.UserID),
			)

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// OptionalAuth attaches a session when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := ExtractToken(r); token != "" {
				session, err := verifier.VerifyToken(r.Context(), token, "")
				if err == nil {
					r = r.WithContext(WithSession(r.Context(), session))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireCapability(c Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSession(r.Context())

			if session == nil {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if !session.Can(c) {
				core.JSONError(w, core.ForbiddenError("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	case errors.Is(err, core.ErrForbidden):
		core.JSONError(w, core.ForbiddenError(""))
	case errors.Is(err, core.ErrTokenInvalid), errors.Is(err, core.ErrUnauthorized):
		core.JSONError(w, core.TokenInvalidError())
	default:
		core.InternalServerError(w, err)
	}
}
