package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour, 24*time.Hour)

	pair, err := issuer.Issue(7, "member")
	require.NoError(t, err)
	assert.Equal(t, 7, pair.UserID)
	assert.NotEmpty(t, pair.RefreshID)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	access, err := issuer.Parse(pair.Access, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, 7, access.UserID)
	assert.Equal(t, "member", access.Role)
	assert.Equal(t, "7", access.Subject)

	refresh, err := issuer.Parse(pair.Refresh, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshID, refresh.ID)
	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt.Time))
	assert.True(t, pair.RefreshExpires.Equal(refresh.ExpiresAt.Time))
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), pair.RefreshExpires, time.Minute)
}

func TestParseRejectsWrongType(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour, 24*time.Hour)
	pair, err := issuer.Issue(1, "member")
	require.NoError(t, err)

	_, err = issuer.Parse(pair.Refresh, TypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
	_, err = issuer.Parse(pair.Access, TypeRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer("test-secret", -time.Minute, time.Hour)
	pair, err := issuer.Issue(1, "member")
	require.NoError(t, err)

	_, err = issuer.Parse(pair.Access, TypeAccess)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	other := NewIssuer("another-secret", time.Hour, time.Hour)
	pair, err := other.Issue(1, "member")
	require.NoError(t, err)

	issuer := NewIssuer("test-secret", time.Hour, time.Hour)
	_, err = issuer.Parse(pair.Access, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not-a-jwt", TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{UserID: 1, Role: "staff", TokenType: TypeAccess}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	issuer := NewIssuer("test-secret", time.Hour, time.Hour)
	_, err = issuer.Parse(raw, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
