package auth

import (
	"errors"
	"time"

	"megacrm-backend/internal/config"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/timeutil"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carry the session identity and its timed grants (scope -> unix expiry)
type Claims struct {
	Actor    string           `json:"actor"`
	Role     string           `json:"role"`
	Employee string           `json:"employee,omitempty"`
	Grants   map[string]int64 `json:"grants,omitempty"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	cfg *config.Config
}

func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{cfg: cfg}
}

// GenerateToken signs a token for the session. Expired grants are dropped.
func (j *JWTManager) GenerateToken(s models.Session) (string, error) {
	now := timeutil.Now()
	expirationTime := now.Add(time.Duration(j.cfg.JWT.ExpirationHours) * time.Hour)

	grants := make(map[string]int64, len(s.Grants))
	for scope, exp := range s.Grants {
		if exp.After(now) {
			grants[scope] = exp.Unix()
		}
	}

	claims := &Claims{
		Actor:    s.Actor,
		Role:     s.Role,
		Employee: s.Employee,
		Grants:   grants,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.cfg.JWT.Issuer,
			Subject:   s.Actor,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.cfg.JWT.Secret))
}

// ValidateToken verifies a JWT token and returns the claims
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(j.cfg.JWT.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// Session rebuilds the request session from validated claims
func (c *Claims) Session(now time.Time) *models.Session {
	s := &models.Session{
		Actor:    c.Actor,
		Role:     c.Role,
		Employee: c.Employee,
		Grants:   make(map[string]time.Time, len(c.Grants)),
		Now:      now,
	}
	for scope, exp := range c.Grants {
		s.Grants[scope] = time.Unix(exp, 0)
	}
	return s
}
