package email

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

// ─── transporte falso ───

type fakeTransport struct {
	mu         sync.Mutex
	name       string
	configured bool
	errs       []error // se consumen en orden; nil = éxito
	calls      []Envelope
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{name: "smtp", configured: true}
}

func (f *fakeTransport) Name() string     { return f.name }
func (f *fakeTransport) Configured() bool { return f.configured }

func (f *fakeTransport) Send(_ context.Context, env Envelope) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, env)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("msg-%d", len(f.calls)), nil
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// ─── email_logs en memoria ───

type memLogs struct {
	mu        sync.Mutex
	rows      map[string]*repository.EmailLog
	seq       int
	insertErr error
	countErr  error
	count     int
	since     time.Time
}

func newMemLogs() *memLogs { return &memLogs{rows: map[string]*repository.EmailLog{}} }

func (m *memLogs) Insert(_ context.Context, in repository.CreateEmailLogInput) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return "", m.insertErr
	}
	m.seq++
	id := fmt.Sprintf("log-%d", m.seq)
	var uid *string
	if in.UserID != "" {
		u := in.UserID
		uid = &u
	}
	m.rows[id] = &repository.EmailLog{
		ID: id, RecipientEmail: in.RecipientEmail, RecipientName: in.RecipientName, UserID: uid,
		EmailType: in.EmailType, Subject: in.Subject, Status: repository.EmailStatusPending, Provider: in.Provider,
	}
	return id, nil
}

func (m *memLogs) MarkSent(_ context.Context, id, providerMessageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	r.Status, r.ProviderMessageID, r.SentAt = repository.EmailStatusSent, &providerMessageID, &now
	return nil
}

func (m *memLogs) MarkFailed(_ context.Context, id, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status, r.ErrorMessage = repository.EmailStatusFailed, &msg
	return nil
}

func (m *memLogs) CountSince(_ context.Context, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.since = since
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.count, nil
}

func (m *memLogs) Stats(context.Context, repository.EmailStatsFilter) ([]repository.EmailTypeStats, error) {
	return nil, errors.New("not implemented")
}

func (m *memLogs) ListByUser(context.Context, string, int) ([]repository.EmailLog, error) {
	return nil, errors.New("not implemented")
}

func (m *memLogs) ListByRecipient(context.Context, string, int) ([]repository.EmailLog, error) {
	return nil, errors.New("not implemented")
}

func (m *memLogs) get(id string) repository.EmailLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}

func (m *memLogs) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// ─── preferencias en memoria ───

type memPrefs struct {
	rows map[string]repository.EmailPreference
	err  error
}

func (m *memPrefs) Get(_ context.Context, userID string) (*repository.EmailPreference, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.rows[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memPrefs) Ensure(ctx context.Context, userID string) (*repository.EmailPreference, error) {
	if _, ok := m.rows[userID]; !ok {
		m.rows[userID] = repository.DefaultEmailPreference(userID)
	}
	return m.Get(ctx, userID)
}

func (m *memPrefs) Upsert(_ context.Context, p repository.EmailPreference) (*repository.EmailPreference, error) {
	m.rows[p.UserID] = p
	return &p, nil
}
