package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random generation for reset tokens
	"crypto/sha256" // SHA-256 hashing for refresh tokens at rest
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures are collapsed into two cases: the middleware and
// the refresh handler only need to distinguish "expired" from every other
// kind of invalidity.
var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived and carried in the Authorization header.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// RefreshToken represents a long-lived signed token used to obtain new
// access tokens. Raw is returned to the client; only the SHA-256 hash of
// Raw is stored server-side.
type RefreshToken struct {
	Raw string
	Exp time.Time
}

// Claims is the identity carried inside both token kinds.
type Claims struct {
	UserID uint64
	Email  string
}

// NewAccessToken builds and signs an HS256 JWT for a user. The JWT carries
// the subject id, the email, expiration (exp) and issued at (iat).
func NewAccessToken(secret string, userID uint64, email string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	signed, err := sign(secret, userID, email, exp)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 JWT under the refresh secret.
// ttlDays controls how many days the token stays exchangeable; the login
// handler passes the longer "remember me" TTL when requested.
func NewRefreshToken(secret string, userID uint64, email string, ttlDays int) (RefreshToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	signed, err := sign(secret, userID, email, exp)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Raw: signed, Exp: exp}, nil
}

func sign(secret string, userID uint64, email string, exp time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifyToken parses and validates a signed token against the given secret.
// It returns ErrTokenExpired for tokens past their exp claim and
// ErrTokenInvalid for every other failure (bad signature, wrong algorithm,
// malformed payload, missing subject).
func VerifyToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return Claims{}, ErrTokenInvalid
	}
	var c Claims
	switch sub := mc["sub"].(type) {
	case float64:
		c.UserID = uint64(sub)
	default:
		return Claims{}, ErrTokenInvalid
	}
	if email, ok := mc["email"].(string); ok {
		c.Email = email
	}
	if c.UserID == 0 {
		return Claims{}, ErrTokenInvalid
	}
	return c, nil
}

// HashRefreshRaw returns the SHA-256 hash of the raw refresh token as a hex
// string. Storing only the hash prevents stolen database entries from being
// replayed against the refresh endpoint.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// NewResetToken returns a 64-character hex string from 32 bytes of secure
// random data, used for the password recovery flow.
func NewResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
