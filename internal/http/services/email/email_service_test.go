package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/store/memory"
)

func seedLogs(t *testing.T, st *memory.Store) {
	t.Helper()
	ctx := context.Background()
	logs := st.EmailLogs()
	for i, typ := range []string{"reservation_created", "reservation_created", "contact_reply"} {
		id, err := logs.Insert(ctx, repository.CreateEmailLogInput{
			RecipientEmail: "u@x.io",
			UserID:         "u1",
			EmailType:      typ,
			Subject:        "s",
			Provider:       "smtp",
		})
		require.NoError(t, err)
		if i == 0 {
			require.NoError(t, logs.MarkFailed(ctx, id, "boom"))
		} else {
			require.NoError(t, logs.MarkSent(ctx, id, "m"))
		}
	}
}

func TestStats_FiltersAndValidation(t *testing.T) {
	day := time.Date(2030, 5, 10, 14, 0, 0, 0, time.UTC)
	st := memory.New().WithClock(func() time.Time { return day })
	seedLogs(t, st)
	svc := NewService(st.EmailLogs(), st.Preferences(), time.UTC)
	ctx := context.Background()

	out, err := svc.Stats(ctx, StatsQuery{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "reservation_created", out[0].EmailType)
	require.EqualValues(t, 2, out[0].Total)
	require.EqualValues(t, 1, out[0].Sent)
	require.EqualValues(t, 1, out[0].Failed)

	// end_date incluye todo el día
	out, err = svc.Stats(ctx, StatsQuery{StartDate: "2030-05-10", EndDate: "2030-05-10"})
	require.NoError(t, err)
	require.Len(t, out, 2)

	out, err = svc.Stats(ctx, StatsQuery{StartDate: "2030-05-11"})
	require.NoError(t, err)
	require.Empty(t, out)

	out, err = svc.Stats(ctx, StatsQuery{EmailType: "contact_reply"})
	require.NoError(t, err)
	require.Len(t, out, 1)

	_, err = svc.Stats(ctx, StatsQuery{StartDate: "10/05/2030"})
	require.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.Stats(ctx, StatsQuery{StartDate: "2030-05-12", EndDate: "2030-05-10"})
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestHistory_Limit(t *testing.T) {
	st := memory.New()
	seedLogs(t, st)
	svc := NewService(st.EmailLogs(), st.Preferences(), nil)

	out, err := svc.History(context.Background(), "u1", 2)
	require.NoError(t, err)
	require.Len(t, out, 2)

	out, err = svc.History(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, out, 3)

	_, err = svc.History(context.Background(), "", 0)
	require.ErrorIs(t, err, ErrMissingUser)
}

func TestPreferences_LazyDefaultsAndPatch(t *testing.T) {
	st := memory.New()
	svc := NewService(st.EmailLogs(), st.Preferences(), nil)
	ctx := context.Background()

	p, err := svc.Preferences(ctx, "u1")
	require.NoError(t, err)
	require.True(t, p.EmailNotifications)
	require.Equal(t, "immediate", p.DigestFrequency)

	off := false
	weekly := "weekly"
	p, err = svc.UpdatePreferences(ctx, "u1", PreferencesPatch{MarketingEmails: &off, DigestFrequency: &weekly})
	require.NoError(t, err)
	require.False(t, p.MarketingEmails)
	require.True(t, p.ReservationConfirmations)
	require.Equal(t, "weekly", p.DigestFrequency)

	bad := "hourly"
	_, err = svc.UpdatePreferences(ctx, "u1", PreferencesPatch{DigestFrequency: &bad})
	require.ErrorIs(t, err, ErrInvalidDigest)

	got, err := st.Preferences().Get(ctx, "u1")
	require.NoError(t, err)
	require.False(t, got.MarketingEmails)
}
