package contact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/store/memory"
)

type replyRecorder struct {
	to    []string
	admin []string
}

func (r *replyRecorder) ContactReply(_ context.Context, msg repository.ContactMessage, _ repository.ContactReply, admin *repository.User) string {
	r.to = append(r.to, msg.Email)
	if admin != nil {
		r.admin = append(r.admin, admin.Email)
	}
	return "t1"
}

func setup(t *testing.T) (Service, *memory.Store, *replyRecorder) {
	t.Helper()
	st := memory.New()
	rec := &replyRecorder{}
	svc := NewService(Deps{
		Contacts: st.Contacts(),
		Users:    st.Users(),
		Activity: st.Activity(),
		Notifier: rec,
	})
	return svc, st, rec
}

func strp(s string) *string { return &s }

func TestSubmit_Validation(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitInput{Name: "A", Email: "a@b.c", Subject: "s"})
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Submit(ctx, SubmitInput{Name: "A", Email: "nope", Subject: "s", Message: "m"})
	require.ErrorIs(t, err, ErrInvalidEmail)

	m, err := svc.Submit(ctx, SubmitInput{Name: " A ", Email: "a@b.c", Subject: "s", Message: "m", Phone: " "})
	require.NoError(t, err)
	require.Equal(t, "A", m.Name)
	require.Equal(t, repository.ContactStatusNew, m.Status)
	require.Nil(t, m.Phone)
}

func TestUpdate_RulesAndAudit(t *testing.T) {
	svc, st, _ := setup(t)
	ctx := context.Background()
	m, err := svc.Submit(ctx, SubmitInput{Name: "A", Email: "a@b.c", Subject: "s", Message: "m"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, m.ID, "adm", repository.UpdateContactInput{})
	require.ErrorIs(t, err, ErrNoUpdates)

	_, err = svc.Update(ctx, m.ID, "adm", repository.UpdateContactInput{Status: strp("bogus")})
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.Update(ctx, m.ID, "adm", repository.UpdateContactInput{Priority: strp("critical")})
	require.ErrorIs(t, err, ErrInvalidPrio)

	up, err := svc.Update(ctx, m.ID, "adm", repository.UpdateContactInput{Status: strp("read"), Priority: strp("urgent")})
	require.NoError(t, err)
	require.NotNil(t, up.ReadAt)
	require.Equal(t, "urgent", up.Priority)

	_, err = svc.Update(ctx, "missing", "adm", repository.UpdateContactInput{Status: strp("read")})
	require.ErrorIs(t, err, ErrNotFound)

	log := st.ActivityLog()
	require.Len(t, log, 1)
	require.Equal(t, "update", log[0].Action)
}

func TestReply_FullFlow(t *testing.T) {
	svc, st, rec := setup(t)
	ctx := context.Background()

	admin, err := st.Users().Create(ctx, repository.CreateUserInput{Email: "admin@x.io", Role: repository.RoleAdmin})
	require.NoError(t, err)
	client, err := st.Users().Create(ctx, repository.CreateUserInput{Email: "client@x.io"})
	require.NoError(t, err)

	m, err := svc.Submit(ctx, SubmitInput{Name: "C", Email: "client@x.io", Subject: "Devis", Message: "Bonjour"})
	require.NoError(t, err)

	_, err = svc.Reply(ctx, m.ID, admin.ID, "   ")
	require.ErrorIs(t, err, ErrEmptyReply)

	_, err = svc.Reply(ctx, "missing", admin.ID, "hola")
	require.ErrorIs(t, err, ErrNotFound)

	reply, err := svc.Reply(ctx, m.ID, admin.ID, "Merci, voici le devis")
	require.NoError(t, err)
	require.Equal(t, m.ID, reply.MessageID)

	d, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, repository.ContactStatusReplied, d.Message.Status)
	require.Equal(t, 1, d.Message.ReplyCount)
	require.Len(t, d.Replies, 1)
	require.Equal(t, "admin@x.io", d.Replies[0].AdminEmail)

	notes := st.UserNotifications()
	require.Len(t, notes, 1)
	require.Equal(t, client.ID, notes[0].UserID)

	require.Equal(t, []string{"client@x.io"}, rec.to)
	require.Equal(t, []string{"admin@x.io"}, rec.admin)
}

func TestReply_VisitorWithoutAccount(t *testing.T) {
	svc, st, rec := setup(t)
	ctx := context.Background()
	m, err := svc.Submit(ctx, SubmitInput{Name: "V", Email: "visitor@x.io", Subject: "s", Message: "m"})
	require.NoError(t, err)

	_, err = svc.Reply(ctx, m.ID, "adm", "ok")
	require.NoError(t, err)
	require.Empty(t, st.UserNotifications())
	require.Len(t, rec.to, 1)
}

func TestDelete_ArchiveThenPermanent(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()
	m, err := svc.Submit(ctx, SubmitInput{Name: "A", Email: "a@b.c", Subject: "s", Message: "m"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, m.ID, "adm", false))
	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, st.Total)

	d, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, repository.ContactStatusArchived, d.Message.Status)

	require.NoError(t, svc.Delete(ctx, m.ID, "adm", true))
	_, err = svc.Get(ctx, m.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, m.ID, "adm", true), ErrNotFound)
}
