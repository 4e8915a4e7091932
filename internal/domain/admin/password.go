package admin

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. Hashes are stored as "<hex key>.<hex salt>", and the salt's
// hex text (not its decoded bytes) is what gets fed to scrypt.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltBytes    = 16
)

var errMalformedHash = errors.New("malformed password hash")

// HashPassword derives a storable hash for password with a random salt.
func HashPassword(password string) (string, error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	salt := hex.EncodeToString(raw)

	key, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("deriving key: %w", err)
	}

	return hex.EncodeToString(key) + "." + salt, nil
}

// ComparePassword reports whether password matches the stored hash, in constant time.
func ComparePassword(password, stored string) (bool, error) {
	hashHex, salt, ok := strings.Cut(stored, ".")
	if !ok || salt == "" {
		return false, errMalformedHash
	}

	want, err := hex.DecodeString(hashHex)
	if err != nil || len(want) == 0 {
		return false, errMalformedHash
	}

	got, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, len(want))
	if err != nil {
		return false, fmt.Errorf("deriving key: %w", err)
	}

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}
