package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/middleware"
	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/types"
)

var (
	ErrInvalidCode     = errors.New("invalid code")
	ErrTooManyAttempts = errors.New("too many verification attempts")
	ErrRateLimited     = errors.New("code recently requested, try again later")
)

const (
	otpTTL            = 10 * time.Minute
	maxVerifyAttempts = 5
	tokenTTL          = 24 * time.Hour
)

// AuthService implements the email one-time-passcode login flow. Codes are
// generated with crypto/rand, bcrypt-hashed, and held in Redis under the
// requesting email with a 10-minute expiry; sessions are stateless JWTs.
type AuthService struct {
	db        *gorm.DB
	redis     *redis.Client
	email     IEmailService
	limiter   *middleware.RateLimiter
	jwtSecret string
}

func NewAuthService(db *gorm.DB, redisClient *redis.Client, emailService IEmailService, jwtSecret string) *AuthService {
	return &AuthService{
		db:    db,
		redis: redisClient,
		email: emailService,
		limiter: middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Window:    otpTTL,
			Limit:     3,
			KeyPrefix: "otp-issue",
		}),
		jwtSecret: jwtSecret,
	}
}

func otpKey(email string) string     { return "otp:" + email }
func attemptKey(email string) string { return "otp-attempts:" + email }

// IssueCode generates and delivers a 6-digit login code. The returned string
// is empty when the code was emailed; when no SMTP delivery is configured the
// code is returned so development callers can surface it directly.
func (s *AuthService) IssueCode(ctx context.Context, email, fullName string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errors.New("email required")
	}

	allowed, _, _, err := s.limiter.IsAllowed(ctx, email)
	if err != nil {
		return "", fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return "", ErrRateLimited
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	// A fresh code replaces any outstanding one and resets the attempt budget.
	pipe := s.redis.TxPipeline()
	pipe.HSet(ctx, otpKey(email), "hash", string(hash), "full_name", fullName)
	pipe.Expire(ctx, otpKey(email), otpTTL)
	pipe.Del(ctx, attemptKey(email))
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store login code: %w", err)
	}

	if err := s.email.SendLoginCode(email, fullName, code); err != nil {
		return "", err
	}
	if !s.email.Configured() {
		return code, nil
	}
	return "", nil
}

// VerifyCode checks a submitted code against the stored hash. On success the
// code is consumed, the user record is created or refreshed, and a session
// token is returned. A non-matching code never persists any identity.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	stored, err := s.redis.HGetAll(ctx, otpKey(email)).Result()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load login code: %w", err)
	}
	hash, ok := stored["hash"]
	if !ok {
		return nil, "", ErrInvalidCode
	}

	attempts, err := s.redis.Incr(ctx, attemptKey(email)).Result()
	if err != nil {
		return nil, "", err
	}
	s.redis.Expire(ctx, attemptKey(email), otpTTL)
	if attempts > maxVerifyAttempts {
		s.redis.Del(ctx, otpKey(email))
		return nil, "", ErrTooManyAttempts
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return nil, "", ErrInvalidCode
	}

	s.redis.Del(ctx, otpKey(email), attemptKey(email))

	user, err := s.upsertUser(email, stored["full_name"])
	if err != nil {
		return nil, "", err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// upsertUser creates the account on first sign-in and refreshes the display
// name on subsequent ones.
func (s *AuthService) upsertUser(email, fullName string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{Email: email, FullName: fullName}
		if user.FullName == "" {
			user.FullName = "Home Cook"
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}

	if fullName != "" && fullName != user.FullName {
		user.FullName = fullName
		if err := s.db.Save(&user).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// UpdateProfile applies the editable profile fields. Empty strings leave the
// existing full name in place; bio and picture may be cleared.
func (s *AuthService) UpdateProfile(userID uuid.UUID, fullName, bio, pictureURL string) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if fullName != "" {
		user.FullName = fullName
	}
	user.Bio = bio
	user.ProfilePictureURL = pictureURL
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser loads the current user for session hydration.
func (s *AuthService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail looks a user up by address, for public cook profiles.
func (s *AuthService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses and validates a session JWT.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, err
	}
	email, _ := claims["email"].(string)

	return &types.TokenClaims{
		UserID: userID,
		Email:  email,
	}, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
