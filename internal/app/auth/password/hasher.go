package password

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

const MinLength = 12

var ErrUnknownHashFormat = errors.New("unknown password hash format")

// Hasher creates bcrypt hashes and verifies both bcrypt and argon2id hashes,
// the latter being what earlier deployments of this service stored.
type Hasher struct {
	cost   int
	pepper string
}

func NewHasher(cost int, pepper string) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost, pepper: pepper}
}

// Hash returns a bcrypt hash of the peppered digest of plain. bcrypt only
// reads 72 bytes, so passwords of any length go through HMAC-SHA256 first.
func (h *Hasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(h.digest(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether plain matches hash. A non-nil error means the hash
// could not be checked at all.
func (h *Hasher) Compare(plain, hash string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(hash), h.digest(plain))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	case strings.HasPrefix(hash, "$argon2id$"):
		return argon2id.ComparePasswordAndHash(plain+h.pepper, hash)
	default:
		return false, fmt.Errorf("%w: %.4q", ErrUnknownHashFormat, hash)
	}
}

// digest is the 44 byte base64 form of HMAC-SHA256(pepper, plain).
func (h *Hasher) digest(plain string) []byte {
	mac := hmac.New(sha256.New, []byte(h.pepper))
	mac.Write([]byte(plain))
	return []byte(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

// Strong reports whether pwd satisfies the password policy: at least
// MinLength characters with an upper case letter, a lower case letter and a
// digit.
func Strong(pwd string) bool {
	if utf8.RuneCountInString(pwd) < MinLength {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range pwd {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}
