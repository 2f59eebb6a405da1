package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"atmcore/internal/repository"
)

const testSecret = "test-secret"

func TestRegisterAndLogin(t *testing.T) {
	store := repository.NewMemoryStore()
	auth := NewAuthService(store, testSecret, time.Minute)
	ctx := context.Background()

	created, token, err := auth.Register(ctx, "alice", "correct")
	if err != nil {
		t.Fatalf("Register err=%v", err)
	}
	if token == "" {
		t.Fatal("expected a session token from Register")
	}

	loggedIn, token, err := auth.Login(ctx, "alice", "correct")
	if err != nil {
		t.Fatalf("Login err=%v", err)
	}
	if loggedIn.ID != created.ID {
		t.Fatalf("login resolved id=%d want=%d", loggedIn.ID, created.ID)
	}

	userID, _, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken err=%v", err)
	}
	if userID != created.ID {
		t.Fatalf("token bound to id=%d want=%d", userID, created.ID)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	store := repository.NewMemoryStore()
	auth := NewAuthService(store, testSecret, time.Minute)
	ctx := context.Background()

	if _, _, err := auth.Register(ctx, "alice", "pw"); err != nil {
		t.Fatal(err)
	}
	_, _, err := auth.Register(ctx, "alice", "other")
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("want ErrUserAlreadyExists, got %v", err)
	}
}

// Wrong password and unknown user must be indistinguishable to the caller.
func TestLoginFailuresAreUniform(t *testing.T) {
	store := repository.NewMemoryStore()
	auth := NewAuthService(store, testSecret, time.Minute)
	ctx := context.Background()

	if _, _, err := auth.Register(ctx, "alice", "correct"); err != nil {
		t.Fatal(err)
	}

	_, _, errWrongPassword := auth.Login(ctx, "alice", "wrong")
	_, _, errUnknownUser := auth.Login(ctx, "bob", "anything")

	if !errors.Is(errWrongPassword, ErrInvalidCredentials) {
		t.Fatalf("wrong password: want ErrInvalidCredentials, got %v", errWrongPassword)
	}
	if !errors.Is(errUnknownUser, ErrInvalidCredentials) {
		t.Fatalf("unknown user: want ErrInvalidCredentials, got %v", errUnknownUser)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	store := repository.NewMemoryStore()
	auth := NewAuthService(store, testSecret, time.Minute)
	ctx := context.Background()

	_, token, err := auth.Register(ctx, "alice", "pw")
	if err != nil {
		t.Fatal(err)
	}

	_, sessionID, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}

	auth.Logout(sessionID)

	if _, _, err := auth.ValidateToken(token); err == nil {
		t.Fatal("token should be rejected after logout")
	}

	// Logging out twice is harmless.
	auth.Logout(sessionID)
}

func TestExpiredSessionRejectedAndSwept(t *testing.T) {
	store := repository.NewMemoryStore()
	auth := NewAuthService(store, testSecret, 10*time.Millisecond)
	ctx := context.Background()

	_, token, err := auth.Register(ctx, "alice", "pw")
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, _, err := auth.ValidateToken(token); err == nil {
		t.Fatal("expired token should be rejected")
	}

	// The expired token was rejected before reaching the registry, so its
	// session entry is still there for the sweeper, alongside a fresh one.
	if _, _, err := auth.Login(ctx, "alice", "pw"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if removed := auth.SweepSessions(); removed != 2 {
		t.Fatalf("swept %d sessions, want 2", removed)
	}
}

func TestValidateTokenWrongKey(t *testing.T) {
	store := repository.NewMemoryStore()
	auth := NewAuthService(store, testSecret, time.Minute)
	other := NewAuthService(store, "other-secret", time.Minute)
	ctx := context.Background()

	_, token, err := auth.Register(ctx, "alice", "pw")
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := other.ValidateToken(token); err == nil {
		t.Fatal("token signed with a different key should be rejected")
	}
}
