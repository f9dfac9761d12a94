// Package idgen makes prefixed public identifiers such as "user_Q2xhc3NpY0lE".
package idgen

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	UserPrefix    = "user"
	DefaultLength = 16
)

var encoding = base64.RawURLEncoding

// New returns prefix, an underscore and length random url-safe characters.
func New(prefix string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("id length must be positive, got %d", length)
	}
	raw := make([]byte, encoding.DecodedLen(length)+1)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return prefix + "_" + encoding.EncodeToString(raw)[:length], nil
}

func NewUserID() (string, error) {
	return New(UserPrefix, DefaultLength)
}

// Valid reports whether id was shaped by New with prefix.
func Valid(id, prefix string) bool {
	suffix, ok := strings.CutPrefix(id, prefix+"_")
	if !ok || suffix == "" {
		return false
	}
	for _, c := range suffix {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
