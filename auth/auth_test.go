// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			// Verify it's valid hex
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	// Test randomness - two IDs should be different
	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestGenerateModeratorKey(t *testing.T) {
	key := GenerateModeratorKey("secret-salt")

	if key == "" {
		t.Fatal("GenerateModeratorKey() returned empty string")
	}
	if key != GenerateModeratorKey("secret-salt") {
		t.Error("GenerateModeratorKey() is not deterministic")
	}
	if key == GenerateModeratorKey("other-salt") {
		t.Error("GenerateModeratorKey() produced same key for different salts")
	}

	// Should be URL-safe (no padding)
	if strings.Contains(key, "=") {
		t.Error("GenerateModeratorKey() contains padding characters")
	}
}

func TestValidateModeratorKey(t *testing.T) {
	salt := "test-salt"
	validKey := GenerateModeratorKey(salt)

	tests := []struct {
		name    string
		key     string
		salt    string
		wantErr bool
	}{
		{"valid key", validKey, salt, false},
		{"wrong key", "wrong-key", salt, true},
		{"wrong salt", validKey, "different-salt", true},
		{"empty key", "", salt, true},
		{"character token", GenerateCharacterToken("Speaker", salt), salt, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateModeratorKey(tt.key, tt.salt)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateModeratorKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != ErrInvalidModeratorKey {
				t.Errorf("ValidateModeratorKey() error = %v, want %v", err, ErrInvalidModeratorKey)
			}
		})
	}
}

func TestValidateCharacterToken(t *testing.T) {
	salt := "character-salt"
	validToken := GenerateCharacterToken("Ann", salt)

	tests := []struct {
		name    string
		char    string
		token   string
		salt    string
		wantErr bool
	}{
		{"valid token", "Ann", validToken, salt, false},
		{"another character", "Cal", validToken, salt, true},
		{"wrong salt", "Ann", validToken, "different-salt", true},
		{"empty token", "Ann", "", salt, true},
		{"empty name", "", validToken, salt, true},
		{"moderator key", "Ann", GenerateModeratorKey(salt), salt, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCharacterToken(tt.char, tt.token, tt.salt)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCharacterToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != ErrInvalidCharacterToken {
				t.Errorf("ValidateCharacterToken() error = %v, want %v", err, ErrInvalidCharacterToken)
			}
		})
	}
}

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name   string
		billID string
		salt   string
	}{
		{"standard", "bill-abc-123", "slug-salt"},
		{"different bill", "bill-xyz-456", "slug-salt"},
		{"different salt", "bill-abc-123", "other-salt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slug := GenerateSlug(tt.billID, tt.salt)

			if slug == "" {
				t.Error("GenerateSlug() returned empty string")
			}
			if slug != GenerateSlug(tt.billID, tt.salt) {
				t.Error("GenerateSlug() is not deterministic")
			}
			if len(slug) > 15 {
				t.Errorf("GenerateSlug() too long: %d chars", len(slug))
			}
			for _, c := range slug {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
					t.Errorf("GenerateSlug() contains non-alphanumeric char: %c", c)
				}
			}
		})
	}

	if GenerateSlug("bill1", "salt") == GenerateSlug("bill2", "salt") {
		t.Error("GenerateSlug() produced same slug for different bill IDs")
	}
	if GenerateSlug("bill1", "salt1") == GenerateSlug("bill1", "salt2") {
		t.Error("GenerateSlug() produced same slug for different salts")
	}
}

func TestBase62Encode(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"zero bytes", []byte{0, 0, 0, 0}},
		{"small value", []byte{0, 0, 0, 1}},
		{"large value", []byte{255, 255, 255, 255, 255, 255, 255, 255}},
		{"mixed value", []byte{42, 123, 200, 17}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := base62Encode(tt.input)

			// Should not be empty (except for all zeros -> "0")
			if result == "" {
				t.Error("base62Encode() returned empty string")
			}

			// Should only contain base62 characters
			for _, c := range result {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
					t.Errorf("base62Encode() contains invalid char: %c", c)
				}
			}

			// Should be deterministic
			result2 := base62Encode(tt.input)
			if result != result2 {
				t.Error("base62Encode() is not deterministic")
			}
		})
	}

	// Different inputs should produce different outputs
	out1 := base62Encode([]byte{1, 2, 3, 4})
	out2 := base62Encode([]byte{5, 6, 7, 8})
	if out1 == out2 {
		t.Error("base62Encode() produced same output for different inputs")
	}
}

func TestHashIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		salt string
	}{
		{"IPv4", "192.168.1.1", "ip-salt"},
		{"IPv6", "2001:0db8:85a3::8a2e:0370:7334", "ip-salt"},
		{"localhost", "127.0.0.1", "ip-salt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := HashIP(tt.ip, tt.salt)

			// Should not be empty
			if hash == "" {
				t.Error("HashIP() returned empty string")
			}

			// Should be 16 hex characters (8 bytes * 2)
			if len(hash) != 16 {
				t.Errorf("HashIP() length = %d, want 16", len(hash))
			}

			// Should be valid hex
			for _, c := range hash {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("HashIP() contains invalid hex char: %c", c)
				}
			}

			// Should be deterministic
			hash2 := HashIP(tt.ip, tt.salt)
			if hash != hash2 {
				t.Error("HashIP() is not deterministic")
			}
		})
	}

	// Different IPs should produce different hashes
	hash1 := HashIP("192.168.1.1", "salt")
	hash2 := HashIP("192.168.1.2", "salt")
	if hash1 == hash2 {
		t.Error("HashIP() produced same hash for different IPs")
	}

	// Different salts should produce different hashes
	hash3 := HashIP("192.168.1.1", "salt1")
	hash4 := HashIP("192.168.1.1", "salt2")
	if hash3 == hash4 {
		t.Error("HashIP() produced same hash for different salts")
	}
}

// Benchmark tests
func BenchmarkGenerateID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateID(16)
	}
}

func BenchmarkValidateCharacterToken(b *testing.B) {
	salt := "character-salt"
	token := GenerateCharacterToken("Ann", salt)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ValidateCharacterToken("Ann", token, salt)
	}
}

func BenchmarkGenerateSlug(b *testing.B) {
	billID := "test-bill-123"
	salt := "slug-salt"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GenerateSlug(billID, salt)
	}
}
