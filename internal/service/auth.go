package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"atmcore/internal/core"
	"atmcore/internal/metrics"
	"atmcore/internal/model"
	"atmcore/internal/repository"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// dummyHash is a valid bcrypt hash compared against when the login is
// unknown, so unknown-user and wrong-password failures cost the same.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

type authService struct {
	userRepo     repository.UserRepository
	jwtSecretKey string
	sessions     *sessionRegistry
}

func NewAuthService(userRepo repository.UserRepository, jwtSecretKey string, sessionTTL time.Duration) core.AuthService {
	return &authService{
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		sessions:     newSessionRegistry(sessionTTL),
	}
}

func (s *authService) Register(ctx context.Context, login, password string) (*model.User, string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Login:        login,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateLogin) {
			return nil, "", ErrUserAlreadyExists
		}
		return nil, "", err
	}

	token, err := s.issueSession(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *authService) Login(ctx context.Context, login, password string) (*model.User, string, error) {
	user, err := s.userRepo.GetByLogin(ctx, login)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		// Burn a comparison anyway; see dummyHash.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueSession(user.ID)
	if err != nil {
		return nil, "", err
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return user, token, nil
}

// Logout revokes the session. Revoking an unknown or already expired
// session is a no-op.
func (s *authService) Logout(sessionID string) {
	s.sessions.remove(sessionID)
}

// ValidateToken checks the token signature and that its session is still
// live, returning the account id and session id it is bound to.
func (s *authService) ValidateToken(tokenString string) (int64, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.jwtSecretKey), nil
	})
	if err != nil {
		return 0, "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", jwt.ErrSignatureInvalid
	}

	rawUserID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", jwt.ErrTokenInvalidClaims
	}
	sessionID, ok := claims["sid"].(string)
	if !ok {
		return 0, "", jwt.ErrTokenInvalidClaims
	}

	userID := int64(rawUserID)
	if !s.sessions.validate(sessionID, userID) {
		return 0, "", ErrInvalidCredentials
	}

	return userID, sessionID, nil
}

func (s *authService) SweepSessions() int {
	return s.sessions.sweep()
}

func (s *authService) issueSession(userID int64) (string, error) {
	sessionID, expiresAt := s.sessions.add(userID)

	claims := jwt.MapClaims{
		"user_id": userID,
		"sid":     sessionID,
		"exp":     expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecretKey))
}
