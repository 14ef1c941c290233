package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var fast = Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashVerify(t *testing.T) {
	h, err := Hash(fast, "correct horse")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=8192,t=1,p=1$"))

	require.True(t, Verify("correct horse", h))
	require.False(t, Verify("wrong horse", h))
}

func TestHash_SaltDiffers(t *testing.T) {
	a, _ := Hash(fast, "x")
	b, _ := Hash(fast, "x")
	require.NotEqual(t, a, b)
}

func TestHash_Empty(t *testing.T) {
	_, err := Hash(fast, "")
	require.ErrorIs(t, err, ErrEmpty)
}

func TestVerify_Malformed(t *testing.T) {
	for _, phc := range []string{"", "plain", "$bcrypt$x", "$argon2id$v=19$m=1,t=1,p=1$!!$!!"} {
		require.False(t, Verify("x", phc), phc)
	}
}

func TestPolicy(t *testing.T) {
	ok, reasons := DefaultPolicy.Validate("short1")
	require.False(t, ok)
	require.Contains(t, reasons, "too_short")

	ok, reasons = DefaultPolicy.Validate("longenough")
	require.False(t, ok)
	require.Equal(t, []string{"missing_digit"}, reasons)

	ok, _ = DefaultPolicy.Validate("longenough42")
	require.True(t, ok)
}
