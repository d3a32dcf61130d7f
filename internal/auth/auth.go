// Package auth issues and verifies admin session tokens.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	apperrors "github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

// DefaultTokenTTL is how long an admin token stays valid
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInactiveAdmin      = errors.New("admin account is inactive")
)

// Claims identifies the signed-in admin
type Claims struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
	// ExpiresAt is informational; expiry is enforced by the token
	ExpiresAt time.Time `json:"expires_at"`
}

// Tokens signs HS256 tokens with a shared secret
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue returns a signed token for the admin and its expiry
func (t *Tokens) Issue(admin *domain.AdminUser) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := jwt.MapClaims{
		"id":    admin.ID.String(),
		"email": admin.Email,
		"role":  admin.Role,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm and expiry and returns the claims
func (t *Tokens) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	rawID, _ := mc["id"].(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	email, _ := mc["email"].(string)
	role, _ := mc["role"].(string)
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}
	return &Claims{ID: id, Email: email, Role: role, ExpiresAt: exp.Time}, nil
}

// HashPassword bcrypt-hashes a password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Service signs admins in against the admin user repository
type Service struct {
	admins repository.AdminUserRepository
	tokens *Tokens
	logger *zap.Logger
}

func NewService(admins repository.AdminUserRepository, tokens *Tokens, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{admins: admins, tokens: tokens, logger: logger}
}

// Login verifies credentials and returns a fresh token. Unknown emails and
// wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.AdminUser, string, time.Time, error) {
	admin, err := s.admins.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		var notFound *apperrors.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}
	if !CheckPassword(password, admin.PasswordHash) {
		s.logger.Warn("Admin login failed", zap.String("email", admin.Email))
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !admin.IsActive {
		return nil, "", time.Time{}, ErrInactiveAdmin
	}

	token, exp, err := s.tokens.Issue(admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	s.logger.Info("Admin signed in", zap.String("email", admin.Email))
	return admin, token, exp, nil
}

// Authenticate verifies a session token and re-reads its admin, so a
// deactivated or deleted account loses access before the token expires.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	admin, err := s.admins.GetByID(ctx, claims.ID)
	if err != nil {
		var notFound *apperrors.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, ErrInactiveAdmin
	}
	claims.Email, claims.Role = admin.Email, admin.Role
	return claims, nil
}

// SetActive enables or disables the admin signed in as email
func (s *Service) SetActive(ctx context.Context, email string, active bool) (*domain.AdminUser, error) {
	admin, err := s.admins.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if err := s.admins.SetActive(ctx, admin.ID, active); err != nil {
		return nil, err
	}
	admin.IsActive = active
	s.logger.Info("Admin access changed", zap.String("email", admin.Email), zap.Bool("active", active))
	return admin, nil
}

// CreateAdmin hashes the password and stores a new active admin
func (s *Service) CreateAdmin(ctx context.Context, email, name, password string) (*domain.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	fields := map[string]string{}
	if email == "" || !strings.Contains(email, "@") {
		fields["email"] = "must be a valid email"
	}
	if len(password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if len(fields) > 0 {
		return nil, &apperrors.ErrValidation{Message: "invalid admin user", Fields: fields}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	admin := &domain.AdminUser{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         domain.AdminRoleAdmin,
		IsActive:     true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}
