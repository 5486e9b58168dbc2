package security

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOpts = DefaultOptions([]byte("test-secret"))

func TestGenerateVerifyRoundTrip(t *testing.T) {
	token, exp, err := Generate(testOpts, "42", "a@example.com")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := Verify(testOpts, token)
	require.NoError(t, err)

	ident, err := IdentityFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "42", ident.UserID)
	assert.Equal(t, "a@example.com", ident.Email)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, err := Generate(DefaultOptions([]byte("other")), "42", "")
	require.NoError(t, err)

	_, err = Verify(testOpts, token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	opts := testOpts
	opts.TTL = -time.Minute
	// TTL<=0 在 Generate 里回退为默认值，手工签一个过期的
	now := time.Now().Add(-2 * time.Hour)
	claims := jwtlib.MapClaims{
		"sub": "42",
		"iat": now.Unix(),
		"exp": now.Add(time.Minute).Unix(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(testOpts.Secret)
	require.NoError(t, err)

	_, err = Verify(testOpts, token)
	assert.Error(t, err)
}

func TestVerifyRejectsNonHMAC(t *testing.T) {
	// alg=none 一律拒绝
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.MapClaims{"sub": "42"}).
		SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = Verify(testOpts, token)
	assert.Error(t, err)
}

func TestIdentityFallbackToIDClaim(t *testing.T) {
	ident, err := IdentityFromClaims(jwtlib.MapClaims{"id": "77"})
	require.NoError(t, err)
	assert.Equal(t, "77", ident.UserID)
}

func TestIdentitySubTakesPrecedence(t *testing.T) {
	ident, err := IdentityFromClaims(jwtlib.MapClaims{"sub": "42", "id": "77"})
	require.NoError(t, err)
	assert.Equal(t, "42", ident.UserID)
}

func TestIdentityMissingSubjectFailsClosed(t *testing.T) {
	for _, claims := range []jwtlib.MapClaims{
		{},
		{"email": "a@example.com"},
		{"sub": ""},
		{"sub": 42}, // 非字符串 subject 不可用
	} {
		_, err := IdentityFromClaims(claims)
		assert.ErrorIs(t, err, ErrNoSubject)
	}
}
