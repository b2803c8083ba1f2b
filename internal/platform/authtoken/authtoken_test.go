package authtoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "party/pkg/domain-errors"
)

func TestIssueAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", "party-test")

	token, err := svc.Issue("crm-sync", "party:write", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "crm-sync", claims.Subject)
	assert.Equal(t, "party:write", claims.Scope)
	assert.Equal(t, "party-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateRejects(t *testing.T) {
	svc := NewService("test-signing-key", "party-test")

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not-a-token")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("expired", func(t *testing.T) {
		token, err := svc.Issue("crm-sync", "", -time.Minute)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		de, ok := dErrors.As(err)
		require.True(t, ok)
		assert.Equal(t, dErrors.CodeUnauthorized, de.Code)
		assert.Equal(t, "token has expired", de.Message)
	})

	t.Run("other key", func(t *testing.T) {
		token, err := NewService("another-key", "party-test").Issue("crm-sync", "", time.Hour)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("other issuer", func(t *testing.T) {
		token, err := NewService("test-signing-key", "someone-else").Issue("crm-sync", "", time.Hour)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := svc.Issue("", "", time.Hour)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
