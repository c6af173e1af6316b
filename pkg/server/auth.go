package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hydromix/hydromix/pkg/log"
)

// authMiddleware validates the bearer ID token on every API request and, when
// an allowlist is configured, requires the token's email to be on it.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("reqPath", r.URL.Path)))

		if s.bypassAuth {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSONError(w, "missing auth header", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Ctx(ctx).WarnContext(ctx, "invalid auth header")
			writeJSONError(w, "invalid auth header", http.StatusBadRequest)
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		email, err := s.authenticateToken(ctx, token)
		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "token validation failed", slog.Any("error", err))
			writeJSONError(w, "invalid auth token", http.StatusUnauthorized)
			return
		}

		if len(s.adminEmails) > 0 && !s.isAdmin(email) {
			log.Ctx(ctx).WarnContext(ctx, "email not allowed", slog.String("email", email))
			writeJSONError(w, "forbidden", http.StatusForbidden)
			return
		}

		ctx = context.WithValue(ctx, userEmailContextKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticateToken verifies the ID token and returns the email claim.
func (s *Server) authenticateToken(ctx context.Context, rawToken string) (string, error) {
	if s.oidcVerifier == nil {
		return "", fmt.Errorf("no oidc verifier configured")
	}
	idToken, err := s.oidcVerifier(ctx, rawToken)
	if err != nil {
		return "", fmt.Errorf("failed to verify token: %w", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", fmt.Errorf("failed to parse token claims: %w", err)
	}
	if claims.Email == "" {
		return "", fmt.Errorf("token missing email claim")
	}
	if !claims.EmailVerified {
		return "", fmt.Errorf("token email not verified")
	}
	return claims.Email, nil
}

// isAdmin returns true if the email is in the adminEmails list.
func (s *Server) isAdmin(email string) bool {
	for _, adminEmail := range s.adminEmails {
		if email == adminEmail {
			return true
		}
	}
	return false
}

func (s *Server) getUserEmail(r *http.Request) string {
	if email, ok := r.Context().Value(userEmailContextKey).(string); ok {
		return email
	}
	return ""
}

// decodeJSONBody decodes a JSON request body into dst with a 1MB size cap.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)
	return json.NewDecoder(r.Body).Decode(dst)
}
