package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/awsomeshop/rewards-be/config"
	"github.com/awsomeshop/rewards-be/middleware"
	"github.com/awsomeshop/rewards-be/models"
)

const (
	accessTokenTTL  = 30 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour

	maxLoginAttempts = 5
	lockoutWindow    = 5 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

// LockedError is returned when an account has exceeded the failed login
// limit. RemainingSeconds tells the caller how long until retry is allowed.
type LockedError struct {
	RemainingSeconds int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, retry in %d seconds", e.RemainingSeconds)
}

// TokenPair bundles the three tokens issued at login. The id token carries
// profile claims only and is never accepted for API access.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token"`
}

type AuthService struct{}

func NewAuthService() *AuthService {
	return &AuthService{}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func (s *AuthService) CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func (s *AuthService) generateToken(user *models.User, ttl time.Duration, tokenType string) (string, error) {
	claims := middleware.Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// GenerateTokens issues the full access/refresh/id token set for a user.
func (s *AuthService) GenerateTokens(user *models.User) (*TokenPair, error) {
	access, err := s.generateToken(user, accessTokenTTL, "")
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(user, refreshTokenTTL, "refresh")
	if err != nil {
		return nil, err
	}
	id, err := s.generateToken(user, accessTokenTTL, "id")
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, IDToken: id}, nil
}

func loginAttemptsKey(username string) string {
	return "login:attempts:" + username
}

// checkLockout reports how long the account stays locked, zero when it is
// not locked. Throttling is skipped entirely when Redis is not configured.
func (s *AuthService) checkLockout(ctx context.Context, username string) int {
	if config.RDB == nil {
		return 0
	}
	attempts, err := config.RDB.Get(ctx, loginAttemptsKey(username)).Int()
	if err != nil || attempts < maxLoginAttempts {
		return 0
	}
	ttl, err := config.RDB.TTL(ctx, loginAttemptsKey(username)).Result()
	if err != nil || ttl <= 0 {
		return int(lockoutWindow.Seconds())
	}
	return int(ttl.Seconds())
}

func (s *AuthService) recordFailedLogin(ctx context.Context, username string) {
	if config.RDB == nil {
		return
	}
	key := loginAttemptsKey(username)
	if err := config.RDB.Incr(ctx, key).Err(); err != nil {
		return
	}
	config.RDB.Expire(ctx, key, lockoutWindow)
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, username string) {
	if config.RDB == nil {
		return
	}
	config.RDB.Del(ctx, loginAttemptsKey(username))
}

// Login authenticates a username/password pair, enforcing the failed-attempt
// lockout, and issues a token set on success.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, *TokenPair, error) {
	if remaining := s.checkLockout(ctx, username); remaining > 0 {
		return nil, nil, &LockedError{RemainingSeconds: remaining}
	}

	var user models.User
	if err := config.DB.Where("username = ? AND is_active = ?", username, true).First(&user).Error; err != nil {
		s.recordFailedLogin(ctx, username)
		return nil, nil, ErrInvalidCredentials
	}

	if !s.CheckPassword(password, user.Password) {
		s.recordFailedLogin(ctx, username)
		return nil, nil, ErrInvalidCredentials
	}

	s.resetLoginAttempts(ctx, username)

	tokens, err := s.GenerateTokens(&user)
	if err != nil {
		return nil, nil, err
	}

	return &user, tokens, nil
}

// Refresh validates a refresh token and issues a fresh access and id token.
// The refresh token itself is not rotated; the client keeps using it until
// its own expiry.
func (s *AuthService) Refresh(refreshToken, username string) (*TokenPair, error) {
	token, err := jwt.ParseWithClaims(refreshToken, &middleware.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidRefresh
	}

	claims, ok := token.Claims.(*middleware.Claims)
	if !ok || claims.TokenType != "refresh" || claims.Username != username {
		return nil, ErrInvalidRefresh
	}

	var user models.User
	if err := config.DB.Where("id = ? AND is_active = ?", claims.UserID, true).First(&user).Error; err != nil {
		return nil, ErrInvalidRefresh
	}

	access, err := s.generateToken(&user, accessTokenTTL, "")
	if err != nil {
		return nil, err
	}
	id, err := s.generateToken(&user, accessTokenTTL, "id")
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, IDToken: id}, nil
}

// CreateUser registers a user and initializes an empty points record for it.
func (s *AuthService) CreateUser(username, email, password string, role models.UserRole, monthlyAllocation int) (*models.User, error) {
	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:          username,
		Email:             email,
		Password:          hashedPassword,
		Role:              role,
		IsActive:          true,
		MonthlyAllocation: monthlyAllocation,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Points{UserID: user.ID, CurrentBalance: 0}).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}
