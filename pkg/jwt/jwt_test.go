package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestService_IssueVerify(t *testing.T) {
	t.Parallel()

	svc, err := New(testKey, time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue(AccessClaims{
		Subject:    "user-1",
		TenantID:   "tenant-1",
		TenantSlug: "hdfc",
		Role:       "member",
	})
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, "hdfc", claims.TenantSlug)
	assert.Equal(t, "member", claims.Role)
	assert.Greater(t, claims.ExpiresAt, claims.IssuedAt)
}

func TestService_Verify_Failures(t *testing.T) {
	t.Parallel()

	svc, err := New(testKey, time.Hour)
	require.NoError(t, err)

	t.Run("tampered payload", func(t *testing.T) {
		t.Parallel()

		token, err := svc.Issue(AccessClaims{Subject: "u", TenantSlug: "hdfc"})
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		forged := parts[0] + "." + base64URLEncode([]byte(`{"sub":"u","tenantSlug":"other"}`)) + "." + parts[2]

		_, err = svc.Verify(forged)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		t.Parallel()

		other, err := New("another-key-another-key-another!", time.Hour)
		require.NoError(t, err)
		token, err := other.Issue(AccessClaims{Subject: "u"})
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		short, err := New(testKey, time.Nanosecond)
		require.NoError(t, err)
		token, err := short.Issue(AccessClaims{Subject: "u"})
		require.NoError(t, err)

		time.Sleep(1100 * time.Millisecond) // exp has one-second resolution

		_, err = short.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("malformed tokens", func(t *testing.T) {
		t.Parallel()

		for _, token := range []string{"", "a", "a.b", "a.b.c.d", "!!.!!.!!"} {
			_, err := svc.Verify(token)
			assert.Error(t, err, "token %q", token)
		}
	})
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSigningKey)
}
