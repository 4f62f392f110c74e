package auth_test

import (
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kashguard/go-payment-intents/internal/auth"
	"github.com/kashguard/go-payment-intents/internal/metrics"
	"github.com/kashguard/go-payment-intents/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T) (*auth.Issuer, *time2.MockClock) {
	t.Helper()

	ids, err := auth.LoadIdentities(test.NewTestCredentials(t))
	require.NoError(t, err)

	m, err := metrics.New()
	require.NoError(t, err)

	clock := time2.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return auth.NewIssuer(ids, clock, time.Hour, m), clock
}

func TestIssueReceiverAssertion(t *testing.T) {
	issuer, clock := newTestIssuer(t)

	assertion, err := issuer.Issue(auth.RoleReceiver, "")
	require.NoError(t, err)

	assert.Equal(t, test.TestReceiverKeyID, assertion.KeyID)
	assert.Equal(t, "EdDSA", assertion.Algorithm)
	assert.Equal(t, test.TestReceiverWalletAddress, assertion.Issuer)
	assert.True(t, clock.Now().Add(time.Hour).Equal(assertion.ExpiresAt))

	claims, err := issuer.Verify(auth.RoleReceiver, assertion.Token)
	require.NoError(t, err)
	assert.Equal(t, test.TestReceiverWalletAddress, claims.Issuer)
	assert.Equal(t, test.TestReceiverKeyID, claims.Subject)
	assert.Equal(t, auth.RoleReceiver, claims.Role)
	assert.NotEmpty(t, claims.ID)

	parsed, _, err := jwt.NewParser().ParseUnverified(assertion.Token, &auth.AssertionClaims{})
	require.NoError(t, err)
	assert.Equal(t, test.TestReceiverKeyID, parsed.Header["kid"])
}

func TestIssueSenderAssertionWithKeyID(t *testing.T) {
	issuer, _ := newTestIssuer(t)

	assertion, err := issuer.Issue(auth.RoleSender, "rotated-key")
	require.NoError(t, err)
	assert.Equal(t, "rotated-key", assertion.KeyID)
	assert.Equal(t, "rotated-key", assertion.Subject)
	assert.Equal(t, "ES256", assertion.Algorithm)

	_, err = issuer.Verify(auth.RoleSender, assertion.Token)
	require.NoError(t, err)

	// signed by sender, must not verify against receiver
	_, err = issuer.Verify(auth.RoleReceiver, assertion.Token)
	assert.Error(t, err)
}

func TestIssuedAssertionsAreUnique(t *testing.T) {
	issuer, _ := newTestIssuer(t)

	a, err := issuer.Issue(auth.RoleReceiver, "")
	require.NoError(t, err)
	b, err := issuer.Issue(auth.RoleReceiver, "")
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)
}

func TestAssertionExpires(t *testing.T) {
	issuer, clock := newTestIssuer(t)

	assertion, err := issuer.Issue(auth.RoleReceiver, "")
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, err = issuer.Verify(auth.RoleReceiver, assertion.Token)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = issuer.Verify(auth.RoleReceiver, assertion.Token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestIssueUnknownRole(t *testing.T) {
	issuer, _ := newTestIssuer(t)

	_, err := issuer.Issue(auth.Role("admin"), "")
	assert.ErrorIs(t, err, auth.ErrUnknownRole)
}
