package ioadapt

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storyloom/storyloom/pkg/accounts"
)

// Claims holds the JWT claims for an authenticated account session.
type Claims struct {
	AccountName string `json:"account_name"`
	Wizard      bool   `json:"wizard"`
	jwt.RegisteredClaims
}

// AuthService issues and validates JWT tokens against the account
// store. Websocket clients authenticate once over HTTP and reuse the
// token on the socket.
type AuthService struct {
	store  *accounts.Store
	jwtKey []byte
	expiry time.Duration
}

// NewAuthService creates an auth service. If jwtSecret is empty, a
// random 32-byte key is generated; tokens then die with the process.
func NewAuthService(store *accounts.Store, jwtSecret string, expiry time.Duration) *AuthService {
	var key []byte
	if jwtSecret != "" {
		key = []byte(jwtSecret)
	} else {
		key = make([]byte, 32)
		rand.Read(key)
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &AuthService{store: store, jwtKey: key, expiry: expiry}
}

// Login authenticates an account and returns a signed token.
func (a *AuthService) Login(name, password string) (string, error) {
	if err := a.store.ValidPassword(name, password); err != nil {
		return "", err
	}
	acc, err := a.store.Get(name)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		AccountName: acc.Name,
		Wizard:      acc.IsWizard(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.Name,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
			Issuer:    "storyloom",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtKey)
}

// ValidateToken parses and validates a token string.
func (a *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.jwtKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// RefreshToken re-signs a still-valid token with a fresh expiry.
func (a *AuthService) RefreshToken(tokenStr string) (string, error) {
	claims, err := a.ValidateToken(tokenStr)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(a.expiry))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtKey)
}

// GenerateJWTSecret generates a random hex-encoded secret suitable for
// the jwt_secret setting.
func GenerateJWTSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
