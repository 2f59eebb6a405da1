package types

type contextKey string

const (
	// UserIDKey holds the authenticated account id in the request context.
	UserIDKey contextKey = "user_id"
	// SessionIDKey holds the session id of the validated token.
	SessionIDKey contextKey = "session_id"
)
