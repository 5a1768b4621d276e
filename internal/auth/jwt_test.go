package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campus/internal/auth"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := auth.Issue("s1", auth.RoleStudent, "campus-test", "secret", time.Minute, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := auth.Parse(pair.AccessToken, "secret", "campus-test")
	require.NoError(t, err)
	require.Equal(t, "s1", claims.Subject)
	require.Equal(t, auth.RoleStudent, claims.Role)
}

func TestParseRejectsWrongKey(t *testing.T) {
	pair, err := auth.Issue("s1", auth.RoleStudent, "campus-test", "secret", time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = auth.Parse(pair.AccessToken, "other-secret", "campus-test")
	require.Error(t, err)
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	pair, err := auth.Issue("s1", auth.RoleStudent, "other-issuer", "secret", time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = auth.Parse(pair.AccessToken, "secret", "campus-test")
	require.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	pair, err := auth.Issue("s1", auth.RoleStudent, "campus-test", "secret", -time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = auth.Parse(pair.AccessToken, "secret", "campus-test")
	require.Error(t, err)
}
