package token

import (
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/kashguard/go-payment-intents/internal/auth"
	"github.com/kashguard/go-payment-intents/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue(t *testing.T) {
	creds := test.NewTestCredentials(t)
	clock := time2.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	res, err := issue(creds, auth.RoleSender, "", clock)
	require.NoError(t, err)

	assert.Equal(t, test.TestSenderKeyID, res.KeyID)
	assert.Equal(t, "sender", res.Role)
	assert.Equal(t, "ES256", res.Algorithm)
	assert.EqualValues(t, 3600, res.ExpiresIn)
	assert.True(t, time.Time(res.ExpiresAt).Equal(clock.Now().Add(time.Hour)))
}

func TestIssueMissingCredentials(t *testing.T) {
	creds := test.NewTestCredentials(t)
	creds.Receiver.PrivateKeyFile = ""

	_, err := issue(creds, auth.RoleReceiver, "", time2.DefaultClock)
	require.ErrorIs(t, err, auth.ErrMissingCredential)
}
