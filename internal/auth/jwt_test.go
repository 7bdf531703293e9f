package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electrozone/backend/internal/auth"
)

func TestManager_IssueAndParse(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	token, err := m.Issue("user-1", "customer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestManager_Parse_WrongSecret(t *testing.T) {
	issuer := auth.NewManager("secret-a", time.Hour)
	verifier := auth.NewManager("secret-b", time.Hour)

	token, err := issuer.Issue("user-1", "customer")
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.True(t, errors.Is(err, auth.ErrInvalidToken))
}

func TestManager_Parse_Expired(t *testing.T) {
	m := auth.NewManager("test-secret", -time.Minute)

	token, err := m.Issue("user-1", "customer")
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.True(t, errors.Is(err, auth.ErrInvalidToken))
}

func TestManager_Parse_Garbage(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	_, err := m.Parse("not.a.token")
	assert.True(t, errors.Is(err, auth.ErrInvalidToken))
}
