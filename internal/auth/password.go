package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher produces and checks one-way password digests.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword(bcryptInput(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

func (BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), bcryptInput(password)) == nil
}

// bcryptMaxInput is the longest password bcrypt accepts.
const bcryptMaxInput = 72

// bcryptInput passes short passwords through and reduces longer ones to a
// base64 SHA-256 digest, so every byte still counts.
func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

type Argon2idHasher struct {
	Params *argon2id.Params
}

func (h Argon2idHasher) Hash(password string) (string, error) {
	params := h.Params
	if params == nil {
		params = argon2id.DefaultParams
	}
	digest, err := argon2id.CreateHash(password, params)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return digest, nil
}

func (Argon2idHasher) Verify(password, digest string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, digest)
	return err == nil && match
}

// MultiHasher hashes with Primary and verifies any digest format it recognizes,
// so switching PASSWORD_HASHER keeps existing accounts usable.
type MultiHasher struct {
	Primary PasswordHasher
}

func NewHasher(name string) (MultiHasher, error) {
	switch strings.ToLower(name) {
	case "", "bcrypt":
		return MultiHasher{Primary: BcryptHasher{}}, nil
	case "argon2id":
		return MultiHasher{Primary: Argon2idHasher{}}, nil
	}
	return MultiHasher{}, fmt.Errorf("unsupported password hasher %q", name)
}

func (m MultiHasher) Hash(password string) (string, error) {
	return m.Primary.Hash(password)
}

func (m MultiHasher) Verify(password, digest string) bool {
	if strings.HasPrefix(digest, "$argon2id$") {
		return Argon2idHasher{}.Verify(password, digest)
	}
	return BcryptHasher{}.Verify(password, digest)
}
