package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"

	"github.com/freshfold/laundry-backend/pkg/config"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

const argonScheme = "argon2id"

var (
	ErrInvalidHash      = errors.New("invalid argon2id hash")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	errEmptyPassword    = errors.New("password cannot be empty")
)

// ValidatePassword applies the registration password policy.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

type argonCost struct {
	memoryKB uint32
	passes   uint32
	lanes    uint8
}

// Hasher produces and checks PHC-style argon2id strings:
//
//	$argon2id$v=19$m=<kb>,t=<passes>,p=<lanes>$<salt>$<key>
type Hasher struct {
	cost    argonCost
	saltLen int
	keyLen  uint32
}

// NewHasher clamps the configured cost into a range that is safe to run on
// an API instance.
func NewHasher(cfg config.PasswordConfig) *Hasher {
	return &Hasher{
		cost: argonCost{
			memoryKB: uint32(clamp(cfg.ArgonMemoryKB, 8, 512*1024)),
			passes:   uint32(clamp(cfg.ArgonTime, 1, 10)),
			lanes:    uint8(clamp(cfg.ArgonParallelism, 1, 255)),
		},
		saltLen: clamp(cfg.ArgonSaltLen, 8, 64),
		keyLen:  uint32(clamp(cfg.ArgonKeyLen, 16, 64)),
	}
}

// Hash derives a fresh salted key for password.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errEmptyPassword
	}
	salt := make([]byte, h.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := derive(password, salt, h.cost, h.keyLen)
	return encodeHash(h.cost, salt, key), nil
}

// Verify reports whether password matches encoded. Hashes are checked with
// the cost they were created with, so older accounts keep working after the
// configuration changes.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	stored, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	key := derive(password, stored.salt, stored.cost, uint32(len(stored.key)))
	return subtle.ConstantTimeCompare(stored.key, key) == 1, nil
}

// NeedsRehash is true when encoded was produced with a different cost or key
// length than the hasher currently uses.
func (h *Hasher) NeedsRehash(encoded string) bool {
	stored, err := decodeHash(encoded)
	if err != nil {
		return true
	}
	return stored.cost != h.cost || uint32(len(stored.key)) != h.keyLen
}

type storedHash struct {
	cost argonCost
	salt []byte
	key  []byte
}

func derive(password string, salt []byte, cost argonCost, keyLen uint32) []byte {
	return argon2.IDKey([]byte(password), salt, cost.passes, cost.memoryKB, cost.lanes, keyLen)
}

func encodeHash(cost argonCost, salt, key []byte) string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argonScheme, argon2.Version,
		cost.memoryKB, cost.passes, cost.lanes,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func decodeHash(encoded string) (storedHash, error) {
	// leading "$" yields an empty first field
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != argonScheme {
		return storedHash{}, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return storedHash{}, ErrInvalidHash
	}

	var out storedHash
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &out.cost.memoryKB, &out.cost.passes, &out.cost.lanes); err != nil {
		return storedHash{}, ErrInvalidHash
	}
	if out.cost.memoryKB == 0 || out.cost.passes == 0 || out.cost.lanes == 0 {
		return storedHash{}, ErrInvalidHash
	}

	var err error
	if out.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil || len(out.salt) == 0 {
		return storedHash{}, ErrInvalidHash
	}
	if out.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil || len(out.key) == 0 {
		return storedHash{}, ErrInvalidHash
	}
	return out, nil
}

func clamp(value, lo, hi int) int {
	switch {
	case value < lo:
		return lo
	case value > hi:
		return hi
	default:
		return value
	}
}
