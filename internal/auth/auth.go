package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrRevokedToken       = errors.New("token revoked")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// DefaultSecret signs tokens when no JWT_SECRET is configured.
const DefaultSecret = "default-secret-key-change-in-production"

// Config describes the single dashboard operator and token lifetime.
type Config struct {
	Secret        string
	Expiry        time.Duration
	AdminUsername string
	AdminPassword string
}

// Service handles authentication operations
type Service struct {
	jwtSecret []byte
	tokenExp  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	operator models.Operator
	revoked  map[string]time.Time // token id -> expiry
}

// NewService creates a new authentication service for the configured operator
func NewService(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		cfg.Secret = DefaultSecret
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = 24 * time.Hour
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}
	if len(cfg.AdminPassword) < 8 {
		return nil, errors.New("admin password must be at least 8 characters long")
	}

	s := &Service{
		jwtSecret: []byte(cfg.Secret),
		tokenExp:  cfg.Expiry,
		now:       time.Now,
		revoked:   make(map[string]time.Time),
	}
	hash, err := s.HashPassword(cfg.AdminPassword)
	if err != nil {
		return nil, err
	}
	s.operator = models.Operator{
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		DisplayName:  "Dispatcher",
	}
	return s, nil
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword checks if a password matches a hash
func (s *Service) CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Login checks the operator's credentials and issues a token.
func (s *Service) Login(req models.LoginRequest) (*models.LoginResponse, error) {
	s.mu.Lock()
	op := s.operator
	s.mu.Unlock()

	if req.Username != op.Username || !s.CheckPassword(req.Password, op.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	token, exp, err := s.GenerateToken(&op)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.operator.LastLogin = &now
	op = s.operator
	s.mu.Unlock()

	return &models.LoginResponse{Token: token, ExpiresAt: exp, Operator: op}, nil
}

// GenerateToken generates a JWT token for an operator
func (s *Service) GenerateToken(op *models.Operator) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.tokenExp)
	claims := jwt.MapClaims{
		"jti":      uuid.NewString(),
		"username": op.Username,
		"role":     string(op.Role),
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	claims, jti, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	_, revoked := s.revoked[jti]
	s.mu.Unlock()
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

func (s *Service) parse(tokenString string) (*models.Claims, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, "", ErrExpiredToken
		}
		return nil, "", ErrInvalidToken
	}

	if !token.Valid {
		return nil, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "", ErrInvalidToken
	}

	jti, ok := claims["jti"].(string)
	if !ok {
		return nil, "", ErrInvalidToken
	}

	username, ok := claims["username"].(string)
	if !ok {
		return nil, "", ErrInvalidToken
	}

	roleStr, ok := claims["role"].(string)
	if !ok || !models.IsValidRole(models.Role(roleStr)) {
		return nil, "", ErrInvalidToken
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, "", ErrInvalidToken
	}

	return &models.Claims{
		Username: username,
		Role:     models.Role(roleStr),
		Exp:      int64(exp),
	}, jti, nil
}

// Revoke invalidates a token until it would have expired anyway.
func (s *Service) Revoke(tokenString string) error {
	claims, jti, err := s.parse(strings.TrimPrefix(tokenString, "Bearer "))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[jti] = time.Unix(claims.Exp, 0)
	return nil
}

// Operator returns the configured account.
func (s *Service) Operator() models.Operator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.operator
}

// ExtractTokenFromHeader extracts token from Authorization header
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}
