package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "/"},
		{"/", "/"},
		{"/reservations/my", "/reservations/my"},
		{"/reservations/123/cancel", "/reservations/:param/cancel"},
		{"/admin/contact/6f1c2b1e-9a3d-4c55-8e0f-1a2b3c4d5e6f", "/admin/contact/:param"},
		{"/categories?limit=5", "/categories"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, NormalizePath(tc.in), tc.in)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	h1, err := Register(Config{Registry: reg})
	require.NoError(t, err)
	require.NotNil(t, h1)

	h2, err := Register(Config{Registry: reg})
	require.NoError(t, err)
	require.NotNil(t, h2)
	require.True(t, Enabled())

	// no debe paniquear con collectors registrados
	RecordEmailSend("smtp", "sent", 0)
	RecordQueueTask("sent")
	RecordQueueRetry("throttled")
	SetQueueDepth(3)
	done := TrackInflight("GET", "/x")
	done()
}
