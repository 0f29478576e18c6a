package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/deliverynotes/internal/common"
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPrincipal = Principal{
	ID:          42,
	Email:       "jane@example.com",
	Role:        models.RoleCompany,
	EmailStatus: 1,
	Status:      models.StatusActive,
}

func TestGenerateAndParse_Success(t *testing.T) {
	secret := []byte("super-secret")

	tok, err := GenerateToken(testPrincipal, secret, time.Hour)
	require.NoError(t, err)

	got, err := ParseToken(tok, secret)
	require.NoError(t, err)
	if diff := cmp.Diff(testPrincipal, *got); diff != "" {
		t.Fatalf("principal mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateToken_PermanentHasNoExpiry(t *testing.T) {
	secret := []byte("k")
	tok, err := GenerateToken(testPrincipal, secret, 0)
	require.NoError(t, err)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) { return secret, nil })
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.True(t, claims.IssuedAt.Time.Before(time.Now().Add(-20*time.Second)))
	assert.NotEmpty(t, claims.ID)
}

func TestParseToken_Expired(t *testing.T) {
	secret := []byte("secret")

	orig := timeNow
	timeNow = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	tok, err := GenerateToken(testPrincipal, secret, 24*time.Hour)
	timeNow = orig
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	assert.True(t, errors.Is(err, common.ErrInvalidJWT))
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, err := GenerateToken(testPrincipal, []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("wrong-secret"))
	assert.True(t, errors.Is(err, common.ErrInvalidJWT))
}

func TestParseToken_Malformed(t *testing.T) {
	_, err := ParseToken("not.a.jwt", []byte("k"))
	assert.True(t, errors.Is(err, common.ErrInvalidJWT))
}

func TestIssuer(t *testing.T) {
	i := NewIssuer("s3cr3t", 24*time.Hour)

	tok, err := i.Issue(testPrincipal)
	require.NoError(t, err)
	p, err := i.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ID)

	perm, err := i.IssuePermanent(testPrincipal)
	require.NoError(t, err)
	_, err = i.Parse(perm)
	assert.NoError(t, err)
}

func TestPrincipalOf(t *testing.T) {
	c, err := models.RestoreContact(models.ContactParams{ID: 3, Email: "a@b.com", Role: models.RolePersonalUser, Status: models.StatusActive, EmailStatus: 1})
	require.NoError(t, err)

	p := PrincipalOf(c)
	assert.Equal(t, Principal{ID: 3, Email: "a@b.com", Role: models.RolePersonalUser, EmailStatus: 1, Status: models.StatusActive}, p)
}
