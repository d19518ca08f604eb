package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"agua24-backend/config"
	"agua24-backend/internal/model"
)

// ErrInvalidCredentials is returned for any login failure. The cause (bad
// identifier vs bad password) is deliberately not disclosed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Session identifies the authenticated caller for the duration of one
// request. Services take it explicitly; there is no ambient current-user
// state anywhere in the process.
type Session struct {
	UserID    uuid.UUID
	Name      string
	Role      model.Role
	MachineID string // condo admin scope; empty for other roles
	Phone     string
}

func (s Session) IsOwner() bool      { return s.Role == model.RoleOwner }
func (s Session) IsTechnician() bool { return s.Role == model.RoleTechnician }
func (s Session) IsCondoAdmin() bool { return s.Role == model.RoleCondoAdmin }

// Claims are the custom payload in the JWT.
type Claims struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	MachineID string `json:"machineId,omitempty"`
	Phone     string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token manager from the auth configuration.
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL}
}

// GenerateToken creates a signed JWT for the given user.
func (m *Manager) GenerateToken(u *model.User) (string, error) {
	claims := Claims{
		Name:      u.Name,
		Role:      string(u.Role),
		MachineID: u.AssignedMachineID,
		Phone:     u.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken validates a token and rebuilds the caller's session.
func (m *Manager) ParseToken(tokenStr string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid token subject: %w", err)
	}
	return &Session{
		UserID:    userID,
		Name:      claims.Name,
		Role:      model.Role(claims.Role),
		MachineID: claims.MachineID,
		Phone:     claims.Phone,
	}, nil
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password with a stored hash.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
