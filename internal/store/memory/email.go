package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

type emailLogRepo Store

func (r *emailLogRepo) Insert(_ context.Context, in repository.CreateEmailLogInput) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := repository.EmailLog{
		ID:             newID(),
		RecipientEmail: in.RecipientEmail,
		RecipientName:  in.RecipientName,
		EmailType:      in.EmailType,
		Subject:        in.Subject,
		Context:        in.Context,
		Variables:      in.Variables,
		Status:         repository.EmailStatusPending,
		Provider:       in.Provider,
		CreatedAt:      r.now(),
	}
	if in.UserID != "" {
		l.UserID = ptr(in.UserID)
	}
	r.emailLogs = append(r.emailLogs, l)
	return l.ID, nil
}

func (r *emailLogRepo) update(id string, fn func(l *repository.EmailLog)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.emailLogs {
		if r.emailLogs[i].ID == id {
			fn(&r.emailLogs[i])
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *emailLogRepo) MarkSent(_ context.Context, id, providerMessageID string) error {
	now := r.now()
	return r.update(id, func(l *repository.EmailLog) {
		l.Status = repository.EmailStatusSent
		l.SentAt = &now
		if providerMessageID != "" {
			l.ProviderMessageID = ptr(providerMessageID)
		}
	})
}

func (r *emailLogRepo) MarkFailed(_ context.Context, id, errorMessage string) error {
	return r.update(id, func(l *repository.EmailLog) {
		l.Status = repository.EmailStatusFailed
		l.ErrorMessage = ptr(errorMessage)
	})
}

func (r *emailLogRepo) CountSince(_ context.Context, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, l := range r.emailLogs {
		if !l.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *emailLogRepo) Stats(_ context.Context, f repository.EmailStatsFilter) ([]repository.EmailTypeStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byType := map[string]*repository.EmailTypeStats{}
	for _, l := range r.emailLogs {
		if f.StartDate != nil && l.CreatedAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && l.CreatedAt.After(*f.EndDate) {
			continue
		}
		if f.EmailType != "" && l.EmailType != f.EmailType {
			continue
		}
		st, ok := byType[l.EmailType]
		if !ok {
			st = &repository.EmailTypeStats{EmailType: l.EmailType}
			byType[l.EmailType] = st
		}
		st.Total++
		switch l.Status {
		case repository.EmailStatusSent:
			st.Sent++
		case repository.EmailStatusFailed:
			st.Failed++
		case repository.EmailStatusDelivered:
			st.Delivered++
		case repository.EmailStatusOpened:
			st.Opened++
		case repository.EmailStatusBounced:
			st.Bounced++
		}
	}
	out := make([]repository.EmailTypeStats, 0, len(byType))
	for _, st := range byType {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].EmailType < out[j].EmailType
	})
	return out, nil
}

func (r *emailLogRepo) list(limit int, match func(repository.EmailLog) bool) []repository.EmailLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []repository.EmailLog{}
	for i := len(r.emailLogs) - 1; i >= 0; i-- {
		if match(r.emailLogs[i]) {
			out = append(out, r.emailLogs[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

func (r *emailLogRepo) ListByUser(_ context.Context, userID string, limit int) ([]repository.EmailLog, error) {
	return r.list(limit, func(l repository.EmailLog) bool {
		return l.UserID != nil && *l.UserID == userID
	}), nil
}

func (r *emailLogRepo) ListByRecipient(_ context.Context, email string, limit int) ([]repository.EmailLog, error) {
	return r.list(limit, func(l repository.EmailLog) bool {
		return l.RecipientEmail == email
	}), nil
}

type preferenceRepo Store

func (r *preferenceRepo) Get(_ context.Context, userID string) (*repository.EmailPreference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prefs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *preferenceRepo) Ensure(_ context.Context, userID string) (*repository.EmailPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.prefs[userID]; ok {
		return &p, nil
	}
	p := repository.DefaultEmailPreference(userID)
	p.UpdatedAt = r.now()
	r.prefs[userID] = p
	return &p, nil
}

func (r *preferenceRepo) Upsert(_ context.Context, p repository.EmailPreference) (*repository.EmailPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.DigestFrequency == "" {
		p.DigestFrequency = "immediate"
	}
	p.UpdatedAt = r.now()
	r.prefs[p.UserID] = p
	return &p, nil
}
