package jwt

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssueParse_RoundTrip(t *testing.T) {
	iss, err := NewIssuer("0123456789abcdef0123456789abcdef", "consultdesk", time.Hour)
	require.NoError(t, err)

	tok, exp, err := iss.Issue("u-1", "a@b.c", "admin")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := iss.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, "u-1", c.Subject)
	require.Equal(t, "admin", c.Role)
	require.Equal(t, "a@b.c", c.Email)
}

func TestParse_Expired(t *testing.T) {
	iss, _ := NewIssuer("secret", "", time.Minute)
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err := iss.Issue("u-1", "", "client")
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_WrongSecretAndIssuer(t *testing.T) {
	a, _ := NewIssuer("secret-a", "a", time.Hour)
	b, _ := NewIssuer("secret-b", "a", time.Hour)
	c, _ := NewIssuer("secret-a", "c", time.Hour)

	tok, _, err := a.Issue("u-1", "", "client")
	require.NoError(t, err)

	_, err = b.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = c.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidIssuer)
}

func TestParse_RejectsNoneAlg(t *testing.T) {
	iss, _ := NewIssuer("secret", "", time.Hour)
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.RegisteredClaims{Subject: "u-1"})
	s, err := tk.SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.Parse(s)
	require.Error(t, err)
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	_, err := NewIssuer("", "x", time.Hour)
	require.ErrorIs(t, err, ErrMissingSecret)
}
