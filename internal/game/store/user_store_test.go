package store

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitToken(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		wantID    int64
		wantPlain string
		wantOK    bool
	}{
		{"valid", "42|abcdef123456", 42, "abcdef123456", true},
		{"plain contains separator", "42|abc|def", 42, "abc|def", true},
		{"no separator", "abcdef123456", 0, "", false},
		{"empty plain", "42|", 0, "", false},
		{"non-numeric id", "forty|abcdef", 0, "", false},
		{"empty", "", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, plain, ok := SplitToken(tt.token)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantPlain, plain)
		})
	}
}

func TestTokenMatches(t *testing.T) {
	sum := sha256.Sum256([]byte("secret-plain"))
	stored := hex.EncodeToString(sum[:])

	assert.True(t, TokenMatches("secret-plain", stored))
	assert.False(t, TokenMatches("wrong-plain", stored))
	assert.False(t, TokenMatches("secret-plain", "not-a-hash"))
	assert.False(t, TokenMatches("", stored))
}
