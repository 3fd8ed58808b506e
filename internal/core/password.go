// AngelaMos | 2026
// password.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var ErrMalformedHash = errors.New("malformed password hash")

// PasswordParams is the argon2id cost a PasswordHasher writes new hashes
// with. Memory is in KiB.
type PasswordParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func DefaultPasswordParams() PasswordParams {
	return PasswordParams{
		Memory:      64 * 1024,
		Iterations:  1,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (p PasswordParams) validate() error {
	switch {
	case p.Iterations < 1:
		return errors.New("argon2 iterations must be at least 1")
	case p.Parallelism < 1:
		return errors.New("argon2 parallelism must be at least 1")
	case p.Memory < 8*uint32(p.Parallelism):
		return errors.New("argon2 memory must be at least 8 KiB per lane")
	case p.SaltLength < 8:
		return errors.New("argon2 salt length must be at least 8 bytes")
	case p.KeyLength < 16:
		return errors.New("argon2 key length must be at least 16 bytes")
	}
	return nil
}

// PasswordHasher hashes passwords in the PHC argon2id format and flags
// stored hashes whose cost differs from its own for upgrade on login.
type PasswordHasher struct {
	params PasswordParams
	dummy  string
}

func NewPasswordHasher(params PasswordParams) (*PasswordHasher, error) {
	if err := params.validate(); err != nil {
		return nil, fmt.Errorf("password params: %w", err)
	}

	h := &PasswordHasher{params: params}

	dummy, err := h.Hash("dummy_password_for_timing_attack_prevention")
	if err != nil {
		return nil, err
	}
	h.dummy = dummy

	return h, nil
}

func (h *PasswordHasher) Params() PasswordParams {
	return h.params
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	return phcHash{
		params: h.params,
		salt:   salt,
		key:    deriveKey(password, salt, h.params),
	}.String(), nil
}

func (h *PasswordHasher) Verify(password, encoded string) (bool, error) {
	stored, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}

	derived := deriveKey(password, stored.salt, stored.params)
	return subtle.ConstantTimeCompare(stored.key, derived) == 1, nil
}

// VerifyAndUpgrade checks password against encoded. On a match with a
// stale cost it also returns a fresh hash under the current params; a
// failed rehash is swallowed since the login itself succeeded.
func (h *PasswordHasher) VerifyAndUpgrade(
	password, encoded string,
) (bool, string, error) {
	ok, err := h.Verify(password, encoded)
	if err != nil || !ok {
		return false, "", err
	}

	if !h.NeedsRehash(encoded) {
		return true, "", nil
	}

	upgraded, err := h.Hash(password)
	if err != nil {
		return true, "", nil
	}
	return true, upgraded, nil
}

// VerifyTimingSafe runs a full derivation even when the account has no
// stored hash, so unknown identifiers cost the same as wrong passwords.
func (h *PasswordHasher) VerifyTimingSafe(
	password string,
	encoded *string,
) (bool, string, error) {
	if encoded == nil || *encoded == "" {
		_, _ = h.Verify(password, h.dummy)
		return false, "", nil
	}
	return h.VerifyAndUpgrade(password, *encoded)
}

func (h *PasswordHasher) NeedsRehash(encoded string) bool {
	stored, err := parsePHC(encoded)
	if err != nil {
		return true
	}

	//nolint:gosec // G115: salt and key lengths are small
	return stored.params.Memory != h.params.Memory ||
		stored.params.Iterations != h.params.Iterations ||
		stored.params.Parallelism != h.params.Parallelism ||
		uint32(len(stored.salt)) != h.params.SaltLength ||
		uint32(len(stored.key)) != h.params.KeyLength
}

func deriveKey(password string, salt []byte, p PasswordParams) []byte {
	return argon2.IDKey(
		[]byte(password),
		salt,
		p.Iterations,
		p.Memory,
		p.Parallelism,
		p.KeyLength,
	)
}

// phcHash is the decoded form of
// $argon2id$v=19$m=<memory>,t=<iterations>,p=<parallelism>$<salt>$<key>.
type phcHash struct {
	params PasswordParams
	salt   []byte
	key    []byte
}

func (p phcHash) String() string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.params.Memory,
		p.params.Iterations,
		p.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(p.salt),
		base64.RawStdEncoding.EncodeToString(p.key),
	)
}

func parsePHC(encoded string) (phcHash, error) {
	var out phcHash

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return out, ErrMalformedHash
	}
	if parts[1] != "argon2id" {
		return out, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return out, fmt.Errorf("%w: version: %w", ErrMalformedHash, err)
	}
	if version != argon2.Version {
		return out, fmt.Errorf("%w: incompatible version %d", ErrMalformedHash, version)
	}

	if _, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&out.params.Memory,
		&out.params.Iterations,
		&out.params.Parallelism,
	); err != nil {
		return out, fmt.Errorf("%w: params: %w", ErrMalformedHash, err)
	}

	var err error
	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return out, fmt.Errorf("%w: salt: %w", ErrMalformedHash, err)
	}
	if out.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return out, fmt.Errorf("%w: key: %w", ErrMalformedHash, err)
	}
	if len(out.salt) == 0 || len(out.key) == 0 {
		return out, ErrMalformedHash
	}

	//nolint:gosec // G115: bounded by the decoded key length
	out.params.KeyLength = uint32(len(out.key))
	//nolint:gosec // G115: bounded by the decoded salt length
	out.params.SaltLength = uint32(len(out.salt))

	return out, nil
}
