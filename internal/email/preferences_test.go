package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

func TestShouldSend_TruthTable(t *testing.T) {
	allOn := repository.DefaultEmailPreference("u")

	masterOff := allOn
	masterOff.EmailNotifications = false

	resOff := allOn
	resOff.ReservationConfirmations = false

	remindOff := allOn
	remindOff.ReservationReminders = false

	projOff := allOn
	projOff.ProjectUpdates = false

	statusOff := allOn
	statusOff.ProjectStatusChanges = false

	payOff := allOn
	payOff.PaymentNotifications = false

	newsOff := allOn
	newsOff.Newsletter = false

	cases := []struct {
		name      string
		pref      *repository.EmailPreference // nil = sin fila
		emailType string
		want      bool
	}{
		{"no row", nil, TypeReservationCreated, true},
		{"master off beats everything", &masterOff, TypeReservationCreated, false},
		{"master off unmapped type", &masterOff, TypeContactReply, false},
		{"all on", &allOn, TypeReservationCreated, true},
		{"reservation created off", &resOff, TypeReservationCreated, false},
		{"reservation confirmed off", &resOff, TypeReservationConfirmed, false},
		{"reservation cancelled off", &resOff, TypeReservationCancelled, false},
		{"reminder unaffected by confirmations", &resOff, TypeReservationReminder, true},
		{"reminder off", &remindOff, TypeReservationReminder, false},
		{"project created off", &projOff, TypeProjectCreated, false},
		{"project updated off", &projOff, TypeProjectUpdated, false},
		{"project delivered off", &projOff, TypeProjectDelivered, false},
		{"status change off", &statusOff, TypeProjectStatusChanged, false},
		{"payment success off", &payOff, TypePaymentSuccess, false},
		{"payment failed off", &payOff, TypePaymentFailed, false},
		{"newsletter off", &newsOff, TypeNewsletter, false},
		{"unmapped type", &resOff, "welcome", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prefs := &memPrefs{rows: map[string]repository.EmailPreference{}}
			if tc.pref != nil {
				prefs.rows["u"] = *tc.pref
			}
			require.Equal(t, tc.want, NewGate(prefs).ShouldSend(context.Background(), "u", tc.emailType))
		})
	}
}

func TestShouldSend_ReadErrorSends(t *testing.T) {
	prefs := &memPrefs{err: errors.New("connection reset")}
	require.True(t, NewGate(prefs).ShouldSend(context.Background(), "u", TypeReservationCreated))
}

func TestShouldSend_NoUserOrNilGate(t *testing.T) {
	prefs := &memPrefs{rows: map[string]repository.EmailPreference{}}
	require.True(t, NewGate(prefs).ShouldSend(context.Background(), "", TypeNewsletter))

	var g *Gate
	require.True(t, g.ShouldSend(context.Background(), "u", TypeNewsletter))
}
