package helper

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourism_marketplace/constants"
	"tourism_marketplace/model"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("other", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute, time.Hour)
	principal := model.Principal{UserID: 7, Email: "a@b.com", Role: constants.ROLE_STAFF}

	access, err := issuer.GenerateAccessToken(principal)
	require.NoError(t, err)

	got, err := issuer.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, principal, *got)

	_, err = issuer.ParseRefreshToken(access)
	assert.Error(t, err, "an access token is not a refresh token")
}

func TestTokenRejectsOtherSecretAndExpiry(t *testing.T) {
	issuer := NewTokenIssuer("one", time.Minute, time.Hour)
	token, err := issuer.GenerateAccessToken(model.Principal{UserID: 1})
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Minute, time.Hour).ParseAccessToken(token)
	assert.Error(t, err)

	expired, err := NewTokenIssuer("one", -time.Minute, time.Hour).GenerateAccessToken(model.Principal{UserID: 1})
	require.NoError(t, err)
	_, err = issuer.ParseAccessToken(expired)
	assert.Error(t, err)
}

func TestNewTicketCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code := NewTicketCode()
		assert.Len(t, code, constants.TICKET_CODE_LENGTH)
		assert.Equal(t, strings.ToUpper(code), code)
		assert.NotContains(t, code, "-")
		seen[code] = true
	}
	assert.Greater(t, len(seen), 190)
}
