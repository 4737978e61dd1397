package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"arnhub/backend/config"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordMismatch    = errors.New("password does not match")
	ErrInvalidHash         = errors.New("password hash format is invalid")
	ErrIncompatibleVersion = errors.New("argon2: incompatible version")
)

const argon2Prefix = "$argon2id$"

// Argon2Params are the cost parameters of an argon2id hash.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// PasswordHasher hashes new passwords with the configured scheme and
// verifies stored hashes of either scheme.
type PasswordHasher struct {
	Scheme     string // bcrypt or argon2id
	BcryptCost int
	Argon2     Argon2Params
}

func NewPasswordHasher(cfg *config.Config) *PasswordHasher {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{
		Scheme:     cfg.PasswordHasher,
		BcryptCost: cost,
		Argon2:     DefaultArgon2Params(),
	}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	if h.Scheme == "argon2id" {
		return h.hashArgon2(password)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hashed), nil
}

// Verify returns ErrPasswordMismatch when password does not produce hash.
func (h *PasswordHasher) Verify(hash, password string) error {
	if strings.HasPrefix(hash, argon2Prefix) {
		return verifyArgon2(hash, password)
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return nil
}

func (h *PasswordHasher) hashArgon2(password string) (string, error) {
	p := h.Argon2
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("argon2: generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

func verifyArgon2(encoded, password string) error {
	p, salt, key, err := decodeArgon2(encoded)
	if err != nil {
		return err
	}

	other := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	if subtle.ConstantTimeCompare(key, other) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

func decodeArgon2(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return p, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if version != argon2.Version {
		return p, nil, nil, ErrIncompatibleVersion
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: invalid salt encoding", ErrInvalidHash)
	}
	p.SaltLength = uint32(len(salt))

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: invalid key encoding", ErrInvalidHash)
	}
	p.KeyLength = uint32(len(key))

	return p, salt, key, nil
}

// RandomToken returns a URL-safe random string built from n random bytes.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
