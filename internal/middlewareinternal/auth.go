package middlewareinternal

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"atmcore/internal/core"
	"atmcore/internal/types"
	"atmcore/internal/util/logger"
)

var errNoToken = errors.New("no session token in request")

// SessionAuthMiddleware validates the session token on every request and
// rejects anything stale or revoked with 401.
func SessionAuthMiddleware(authService core.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := extractToken(r)
			if err != nil {
				logger.Log.Debug("Failed to extract token",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			userID, sessionID, err := authService.ValidateToken(tokenString)
			if err != nil {
				logger.Log.Warn("Invalid session token",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), types.UserIDKey, userID)
			ctx = context.WithValue(ctx, types.SessionIDKey, sessionID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie("jwt")
	if err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errNoToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errNoToken
	}

	return parts[1], nil
}

func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(types.UserIDKey).(int64)
	return userID, ok
}

func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(types.SessionIDKey).(string)
	return sessionID, ok
}
