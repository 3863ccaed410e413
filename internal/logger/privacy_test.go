package logger

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := InitHashSalt("test-salt-for-unit-tests-minimum-32-chars"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestHashUserID(t *testing.T) {
	t.Run("produces consistent hash for same user ID", func(t *testing.T) {
		require.Equal(t, HashUserID(12345), HashUserID(12345))
	})

	t.Run("produces different hashes for different user IDs", func(t *testing.T) {
		require.NotEqual(t, HashUserID(12345), HashUserID(67890))
	})

	t.Run("produces 8 character hash", func(t *testing.T) {
		require.Len(t, HashUserID(12345), 8)
	})

	t.Run("changes hash when salt changes", func(t *testing.T) {
		originalSalt := hashSalt
		defer func() { hashSalt = originalSalt }()

		hash1 := HashUserID(12345)
		hashSalt = "different-salt"
		hash2 := HashUserID(12345)

		require.NotEqual(t, hash1, hash2)
	})
}

func TestHashChatID(t *testing.T) {
	require.Equal(t, HashChatID(-100123), HashChatID(-100123))
	require.NotEqual(t, HashChatID(1), HashChatID(2))
}

func TestSanitizeText(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		require.Equal(t, "<empty>", SanitizeText(""))
	})

	t.Run("short text shows only length", func(t *testing.T) {
		require.Equal(t, "<6 chars>", SanitizeText("secret"))
	})

	t.Run("shows prefix for longer text", func(t *testing.T) {
		result := SanitizeText("this is a long text")
		require.Contains(t, result, "thi...")
		require.Contains(t, result, "19 chars")
	})

	t.Run("counts runes, not bytes", func(t *testing.T) {
		result := SanitizeText("আমাদের মেস বাজার তালিকা")
		require.Contains(t, result, "আমা...")
		require.Contains(t, result, "23 chars")
	})
}

func TestInitHashSalt(t *testing.T) {
	t.Run("empty salt keeps development default", func(t *testing.T) {
		originalSalt := hashSalt
		defer func() { hashSalt = originalSalt }()

		err := InitHashSalt("")
		require.Error(t, err)
		require.Equal(t, devHashSalt, hashSalt)
	})

	t.Run("short salt is rejected", func(t *testing.T) {
		originalSalt := hashSalt
		defer func() { hashSalt = originalSalt }()

		err := InitHashSalt("short")
		require.Error(t, err)
		require.Equal(t, originalSalt, hashSalt)
	})

	t.Run("valid salt is applied", func(t *testing.T) {
		originalSalt := hashSalt
		defer func() { hashSalt = originalSalt }()

		validSalt := "this-is-a-valid-salt-with-at-least-32-characters"
		require.NoError(t, InitHashSalt(validSalt))
		require.Equal(t, validSalt, hashSalt)
	})
}
