package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTokenMalformed = errors.New("invalid token format")
	ErrTokenSignature = errors.New("invalid token signature")
	ErrTokenExpired   = errors.New("token expired")
)

// SignedURLSigner creates and validates expiring HMAC tokens that reference a subject
// (for receipts: the student) and a resource path under it.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate returns a signed token binding subject and resource until the TTL elapses.
func (s *SignedURLSigner) Generate(subject, resource string) (string, time.Time, error) {
	if subject == "" || resource == "" {
		return "", time.Time{}, fmt.Errorf("subject and resource required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(resource))
	signature := s.sign(subject, ts, encoded)
	return strings.Join([]string{subject, ts, encoded, signature}, "."), expiresAt, nil
}

// Parse validates a token and returns the embedded subject and resource.
func (s *SignedURLSigner) Parse(token string) (subject, resource string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, ErrTokenMalformed
	}
	subject, ts, encoded, signature := parts[0], parts[1], parts[2], parts[3]

	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", "", time.Time{}, ErrTokenMalformed
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", time.Time{}, ErrTokenMalformed
	}
	if !hmac.Equal([]byte(s.sign(subject, ts, encoded)), []byte(signature)) {
		return "", "", time.Time{}, ErrTokenSignature
	}
	expiresAt = time.Unix(expUnix, 0)
	if s.now().After(expiresAt) {
		return "", "", time.Time{}, ErrTokenExpired
	}
	return subject, string(raw), expiresAt, nil
}

func (s *SignedURLSigner) sign(subject, ts, encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(subject + "|" + ts + "|" + encoded))
	return hex.EncodeToString(mac.Sum(nil))
}
