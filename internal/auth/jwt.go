package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuerName = "marble-scene"

var (
	// ErrInvalidToken возвращается для просроченных, подделанных и битых токенов
	ErrInvalidToken = errors.New("invalid token")
	// ErrAccessDenied возвращается, если ключ клиента не совпал
	ErrAccessDenied = errors.New("access denied")
)

// Claims represents JWT claims
type Claims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// Issuer выпускает и проверяет токены клиентов REST API
type Issuer struct {
	secret    []byte
	accessKey string
	ttl       time.Duration
	now       func() time.Time
}

// NewIssuer создаёт издателя токенов. Пустой secret заменяется случайным:
// токены тогда действительны только до перезапуска процесса.
func NewIssuer(secret, accessKey string, ttl time.Duration) *Issuer {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			// Fallback to a hardcoded key only for development
			key = []byte("development-secret-key-change-in-production")
		}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: key, accessKey: accessKey, ttl: ttl, now: time.Now}
}

// TTL возвращает срок жизни выпускаемых токенов
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Authorize проверяет ключ клиента и выпускает токен.
// Если ключ доступа не настроен, токен выдаётся любому клиенту.
func (i *Issuer) Authorize(clientID, accessKey string) (string, time.Time, error) {
	if clientID == "" {
		return "", time.Time{}, fmt.Errorf("%w: empty client id", ErrAccessDenied)
	}
	if i.accessKey != "" && subtle.ConstantTimeCompare([]byte(i.accessKey), []byte(accessKey)) != 1 {
		return "", time.Time{}, ErrAccessDenied
	}
	return i.Issue(clientID)
}

// Issue creates a signed token for the given client
func (i *Issuer) Issue(clientID string) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(i.ttl)
	claims := &Claims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuerName,
			Subject:   clientID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Validate checks token validity and returns its claims
func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithIssuer(issuerName), jwt.WithTimeFunc(i.now))

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// GenerateSecureSecret generates a new secure secret key
func GenerateSecureSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(b)
}
