package identity

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexID = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestDerive_Deterministic(t *testing.T) {
	first := Derive("alice", "correct horse")
	second := Derive("alice", "correct horse")

	assert.Equal(t, first, second)
	assert.Regexp(t, hexID, first)
}

func TestDerive_KnownValue(t *testing.T) {
	// first half of sha256("user:pass"), matching ids minted by browser clients
	assert.Equal(t, "ef4c914c591698b268db3c64163eafda", Derive("user", "pass"))
	assert.Equal(t, "7534dfc5bb83f1334c1dd32ff8f46bea", Derive("alice", "wonderland"))
	assert.Len(t, Derive("", ""), Length)
}

func TestDerive_NoCollisionsAcrossSample(t *testing.T) {
	seen := make(map[string]string)
	for u := 0; u < 40; u++ {
		for p := 0; p < 40; p++ {
			user := fmt.Sprintf("user%d", u)
			pass := fmt.Sprintf("pw%d", p)
			id := Derive(user, pass)
			pair := user + "/" + pass
			if prev, ok := seen[id]; ok {
				t.Fatalf("collision between %s and %s", prev, pair)
			}
			seen[id] = pair
		}
	}
	assert.Len(t, seen, 1600)
}

func TestDerive_FieldBoundaryMatters(t *testing.T) {
	assert.NotEqual(t, Derive("ab", "c"), Derive("a", "bc"))
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid", "alice", "secret", nil},
		{"empty username", "  ", "secret", ErrEmptyUsername},
		{"separator in username", "al:ice", "secret", ErrInvalidUsername},
		{"separator in password is fine", "alice", "se:cret", nil},
		{"empty password", "alice", "", ErrEmptyPassword},
		{"blank password", "alice", " \t ", ErrEmptyPassword},
		{"short password is fine for login", "alice", "pw", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.username, tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid", "alice", "secret", nil},
		{"exactly minimum", "alice", "abcd", nil},
		{"multibyte counts characters", "alice", "비밀번호", nil},
		{"too short", "alice", "abc", ErrShortPassword},
		{"blank", "alice", "    ", ErrEmptyPassword},
		{"bad username first", "al:ice", "secret", ErrInvalidUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignup(tt.username, tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGenerateRandom(t *testing.T) {
	alnum := regexp.MustCompile(`^[A-Za-z0-9]{32}$`)
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		id, err := GenerateRandom()
		require.NoError(t, err)
		assert.Regexp(t, alnum, id)
		assert.False(t, seen[id], "duplicate random id %s", id)
		seen[id] = true
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("abc"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("   "))
}
