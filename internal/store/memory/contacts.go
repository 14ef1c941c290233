package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

type contactRepo Store

var priorityRank = map[string]int{
	repository.PriorityUrgent: 1,
	repository.PriorityHigh:   2,
	repository.PriorityNormal: 3,
	repository.PriorityLow:    4,
}

func (r *contactRepo) replyCountLocked(id string) int {
	n := 0
	for _, rp := range r.replies {
		if rp.MessageID == id {
			n++
		}
	}
	return n
}

func (r *contactRepo) Create(_ context.Context, in repository.CreateContactInput) (*repository.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prio := in.Priority
	if prio == "" {
		prio = repository.PriorityNormal
	}
	m := repository.ContactMessage{
		ID:        newID(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Subject:   in.Subject,
		Message:   in.Message,
		Status:    repository.ContactStatusNew,
		Priority:  prio,
		CreatedAt: r.now(),
	}
	r.contacts[m.ID] = m
	return &m, nil
}

func (r *contactRepo) GetByID(_ context.Context, id string) (*repository.ContactMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.contacts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.ReplyCount = r.replyCountLocked(id)
	return &m, nil
}

func contains(field, needle string) bool {
	return strings.Contains(strings.ToLower(field), needle)
}

func (r *contactRepo) List(_ context.Context, f repository.ContactFilter) ([]repository.ContactMessage, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	all := []repository.ContactMessage{}
	for _, m := range r.contacts {
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.Priority != "" && m.Priority != f.Priority {
			continue
		}
		if search != "" && !contains(m.Name, search) && !contains(m.Email, search) &&
			!contains(m.Subject, search) && !contains(m.Message, search) {
			continue
		}
		m.ReplyCount = r.replyCountLocked(m.ID)
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool {
		pi, pj := priorityRank[all[i].Priority], priorityRank[all[j].Priority]
		if pi != pj {
			return pi < pj
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	total := len(all)
	if offset >= total {
		return []repository.ContactMessage{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *contactRepo) Update(_ context.Context, id string, in repository.UpdateContactInput) (*repository.ContactMessage, error) {
	if in.Status == nil && in.Priority == nil && in.AssignedTo == nil {
		return nil, repository.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.contacts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.Status != nil {
		m.Status = *in.Status
		if (m.Status == repository.ContactStatusRead || m.Status == repository.ContactStatusReplied) && m.ReadAt == nil {
			m.ReadAt = ptr(r.now())
		}
	}
	if in.Priority != nil {
		m.Priority = *in.Priority
	}
	if in.AssignedTo != nil {
		if *in.AssignedTo == "" {
			m.AssignedTo = nil
		} else {
			m.AssignedTo = ptr(*in.AssignedTo)
		}
	}
	r.contacts[id] = m
	return &m, nil
}

func (r *contactRepo) Archive(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.contacts[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.Status = repository.ContactStatusArchived
	r.contacts[id] = m
	return nil
}

func (r *contactRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contacts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.contacts, id)
	kept := r.replies[:0]
	for _, rp := range r.replies {
		if rp.MessageID != id {
			kept = append(kept, rp)
		}
	}
	r.replies = kept
	return nil
}

func (r *contactRepo) Stats(_ context.Context) (*repository.ContactStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.now()
	week, month := now.AddDate(0, 0, -7), now.AddDate(0, 0, -30)

	var s repository.ContactStats
	for _, m := range r.contacts {
		if m.Status == repository.ContactStatusArchived {
			continue
		}
		s.Total++
		switch m.Status {
		case repository.ContactStatusNew:
			s.NewMessages++
		case repository.ContactStatusRead:
			s.Read++
		case repository.ContactStatusReplied:
			s.Replied++
		}
		if m.Priority == repository.PriorityUrgent {
			s.Urgent++
		}
		if !m.CreatedAt.Before(week) {
			s.ThisWeek++
		}
		if !m.CreatedAt.Before(month) {
			s.ThisMonth++
		}
	}
	return &s, nil
}

func (r *contactRepo) ListReplies(_ context.Context, messageID string) ([]repository.ContactReply, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []repository.ContactReply{}
	for _, rp := range r.replies {
		if rp.MessageID == messageID {
			if u, ok := r.users[rp.AdminID]; ok {
				rp.AdminFirstname, rp.AdminLastname, rp.AdminEmail = u.Firstname, u.Lastname, u.Email
			}
			out = append(out, rp)
		}
	}
	return out, nil
}

func (r *contactRepo) AddReply(_ context.Context, messageID, adminID, text string) (*repository.ContactReply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.contacts[messageID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	now := r.now()
	rp := repository.ContactReply{
		ID:        newID(),
		MessageID: messageID,
		AdminID:   adminID,
		ReplyText: text,
		CreatedAt: now,
	}
	r.replies = append(r.replies, rp)

	m.Status = repository.ContactStatusReplied
	m.RepliedAt = &now
	m.RepliedBy = ptr(adminID)
	if m.ReadAt == nil {
		m.ReadAt = &now
	}
	r.contacts[messageID] = m
	return &rp, nil
}
