// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidModeratorKey   = errors.New("invalid moderator key")
	ErrInvalidCharacterToken = errors.New("invalid character token")
)

// moderatorScope is the fixed HMAC input for the chamber's moderator key
const moderatorScope = "westminster:moderator"

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// sign returns the URL-safe, unpadded HMAC-SHA256 of msg
func sign(msg, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(msg))
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}

// GenerateModeratorKey derives the key moderators and the Speaker present
// in X-Moderator-Key. Deterministic for a given salt.
func GenerateModeratorKey(salt string) string {
	return sign(moderatorScope, salt)
}

// ValidateModeratorKey checks a presented moderator key
func ValidateModeratorKey(key, salt string) error {
	if key == "" || !hmac.Equal([]byte(key), []byte(GenerateModeratorKey(salt))) {
		return ErrInvalidModeratorKey
	}
	return nil
}

// GenerateCharacterToken derives the token a player presents to act as a
// character. The platform hands it out when a player claims the character.
func GenerateCharacterToken(name, salt string) string {
	return sign("character:"+name, salt)
}

// ValidateCharacterToken checks that token belongs to the named character
func ValidateCharacterToken(name, token, salt string) error {
	if name == "" || token == "" {
		return ErrInvalidCharacterToken
	}
	if !hmac.Equal([]byte(token), []byte(GenerateCharacterToken(name, salt))) {
		return ErrInvalidCharacterToken
	}
	return nil
}

// GenerateSlug creates a short, deterministic public handle for a bill
// Uses HMAC for determinism and base62 encoding for URL-friendliness
func GenerateSlug(billID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(billID))
	sum := h.Sum(nil)

	// Take first 8 bytes for a shorter slug
	return base62Encode(sum[:8])
}

// base62Encode converts bytes to base62 (0-9, a-z, A-Z)
func base62Encode(data []byte) string {
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}

	if num == 0 {
		return "0"
	}

	result := make([]byte, 0, 11) // max length for uint64
	for num > 0 {
		result = append(result, base62Chars[num%62])
		num /= 62
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return string(result)
}

// HashIP creates a one-way hash of an IP address for the ballot audit trail
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 16 hex chars (64 bits) is enough for deduplication
	return hex.EncodeToString(sum[:8])
}
