package password

import (
	"strings"
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_BcryptRoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, "pepper")

	hash, err := h.Hash("Securepassword1")
	require.NoError(t, err)
	require.NotEqual(t, "Securepassword1", hash)

	ok, err := h.Compare("Securepassword1", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Compare("Securepassword2", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHasher_LongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, "pepper")
	long := "Securepassword1" + strings.Repeat("a", 60)
	require.True(t, Strong(long))

	hash, err := h.Hash(long)
	require.NoError(t, err)

	ok, err := h.Compare(long, hash)
	require.NoError(t, err)
	require.True(t, ok)

	// bytes past the 72nd still count
	ok, err = h.Compare(long[:len(long)-1]+"b", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHasher_DefaultCost(t *testing.T) {
	h := NewHasher(0, "")
	hash, err := h.Hash("Securepassword1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, 10, cost)
}

func TestHasher_PepperMatters(t *testing.T) {
	hash, err := NewHasher(bcrypt.MinCost, "a").Hash("Securepassword1")
	require.NoError(t, err)

	ok, err := NewHasher(bcrypt.MinCost, "b").Compare("Securepassword1", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHasher_Argon2idLegacy(t *testing.T) {
	params := &argon2id.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	legacy, err := argon2id.CreateHash("Securepassword1"+"pepper", params)
	require.NoError(t, err)

	h := NewHasher(bcrypt.MinCost, "pepper")
	ok, err := h.Compare("Securepassword1", legacy)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Compare("nope", legacy)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHasher_UnknownFormat(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, "")
	_, err := h.Compare("x", "plaintext")
	require.ErrorIs(t, err, ErrUnknownHashFormat)

	_, err = h.Compare("x", "$2a$10$short")
	require.Error(t, err)
}

func TestStrong(t *testing.T) {
	cases := map[string]bool{
		"Securepassword1": true,
		"password!":       false,
		"securepassword1": false,
		"SECUREPASSWORD1": false,
		"Securepassword":  false,
		"Short1a":         false,
		"Ünïcödepass1Ab":  true,
	}
	for pwd, want := range cases {
		require.Equal(t, want, Strong(pwd), pwd)
	}
}
