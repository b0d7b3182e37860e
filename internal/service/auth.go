package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"

	"civicreports/internal/models"
	"civicreports/internal/repository"
)

var ( // Define custom errors
	ErrModeratorExists    = errors.New("moderator already exists")
	ErrModeratorNotFound  = errors.New("moderator not found")
	ErrModeratorInactive  = errors.New("moderator is deactivated")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService issues moderator sessions. Credentials are checked against the
// moderator registry; deactivated moderators cannot log in.
type AuthService interface {
	Register(identifier, name, email, password string) (*models.Moderator, error)
	Login(identifier, password string) (string, time.Time, error) // Returns JWT token, expiration time, and error
}

type authService struct {
	moderators repository.ModeratorStore
	jwtSecret  []byte
	tokenTTL   time.Duration
	logger     *zap.Logger
}

// NewAuthService creates an AuthService over the moderator registry.
func NewAuthService(moderators repository.ModeratorStore, jwtSecret []byte, tokenTTL time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		moderators: moderators,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		logger:     logger,
	}
}

func (s *authService) Register(identifier, name, email, password string) (*models.Moderator, error) {
	existing, err := s.moderators.GetModerator(identifier)
	if err != nil {
		s.logger.Error("Failed to check existing moderator", zap.Error(err))
		return nil, fmt.Errorf("failed to check existing moderator: %w", err)
	}
	if existing != nil {
		return nil, ErrModeratorExists
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	moderator := &models.Moderator{
		Identifier:   identifier,
		Name:         name,
		Email:        email,
		Role:         "moderator",
		Active:       true,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	if err := s.moderators.UpsertModerator(moderator); err != nil {
		s.logger.Error("Failed to create moderator", zap.Error(err))
		return nil, fmt.Errorf("failed to create moderator: %w", err)
	}

	return moderator, nil
}

func (s *authService) Login(identifier, password string) (string, time.Time, error) {
	moderator, err := s.moderators.GetModerator(identifier)
	if err != nil {
		s.logger.Error("Failed to load moderator", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("failed to load moderator: %w", err)
	}
	if moderator == nil {
		return "", time.Time{}, ErrModeratorNotFound
	}
	if !moderator.Active {
		return "", time.Time{}, ErrModeratorInactive
	}

	if !verifyPassword(moderator.PasswordHash, password) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	expirationTime := time.Now().Add(s.tokenTTL)
	claims := &models.Claims{
		Identifier: moderator.Identifier,
		Role:       moderator.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.Error("Failed to generate JWT token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("Moderator logged in successfully.", zap.String("identifier", moderator.Identifier))

	return tokenString, expirationTime, nil
}

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// hashPassword uses Argon2id to hash the password. Salt and parameters are
// stored alongside the hash:
// $argon2id$v=19$m=65536,t=1,p=4$BASE64_SALT$BASE64_HASH
func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads, encodedSalt, encodedHash), nil
}

// verifyPassword compares a plaintext password with an encoded Argon2 hash.
func verifyPassword(encodedHash, password string) bool {
	sections := strings.Split(strings.TrimPrefix(encodedHash, "$"), "$")
	// Expected format: ["argon2id", "v=19", "m=65536,t=1,p=4", "salt", "hash"]
	if len(sections) != 5 || sections[0] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(sections[1], "v=%d", &version); err != nil {
		return false
	}

	var m uint32
	var t uint32
	var p uint8
	if _, err := fmt.Sscanf(sections[2], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(sections[3])
	if err != nil {
		return false
	}
	hash, err := base64.RawStdEncoding.DecodeString(sections[4])
	if err != nil {
		return false
	}

	comparison := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(hash)))
	return subtle.ConstantTimeCompare(comparison, hash) == 1
}
