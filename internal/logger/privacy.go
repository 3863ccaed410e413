package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"
)

// MinHashSaltLength is the shortest salt accepted by InitHashSalt.
const MinHashSaltLength = 32

const devHashSalt = "mess-bot-development-salt-do-not-use-in-production"

var hashSalt = devHashSalt

// InitHashSalt sets the salt used to hash Telegram ids in logs. An empty
// salt keeps the development default and returns an error so the caller
// can warn about it.
func InitHashSalt(salt string) error {
	if salt == "" {
		hashSalt = devHashSalt
		return errors.New("LOG_HASH_SALT is not set, using development salt")
	}
	if len(salt) < MinHashSaltLength {
		return fmt.Errorf("LOG_HASH_SALT must be at least %d characters", MinHashSaltLength)
	}
	hashSalt = salt
	return nil
}

func hashID(id int64) string {
	data := fmt.Sprintf("%d:%s", id, hashSalt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:8]
}

// HashUserID creates a privacy-preserving hash of a Telegram user ID.
func HashUserID(userID int64) string {
	return hashID(userID)
}

// HashChatID creates a privacy-preserving hash of a chat ID.
func HashChatID(chatID int64) string {
	return hashID(chatID)
}

// SanitizeText is a general-purpose sanitizer for any user-provided text.
func SanitizeText(text string) string {
	if text == "" {
		return "<empty>"
	}

	n := utf8.RuneCountInString(text)
	if n <= 10 {
		return fmt.Sprintf("<%d chars>", n)
	}

	prefix := []rune(text)[:3]
	return fmt.Sprintf("%s...<%d chars>", string(prefix), n)
}
