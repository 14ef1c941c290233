package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

type reservationRepo Store

// withUser completa los campos del join con users.
func (r *reservationRepo) withUser(res repository.Reservation) repository.Reservation {
	if u, ok := r.users[res.UserID]; ok {
		res.UserEmail = u.Email
		res.UserFirstname = u.Firstname
		res.UserLastname = u.Lastname
	}
	return res
}

func (r *reservationRepo) slotTakenLocked(date, tm string) bool {
	for _, res := range r.reservations {
		if res.Date == date && res.Time == tm && res.IsActive() {
			return true
		}
	}
	return false
}

func (r *reservationRepo) SlotTaken(_ context.Context, date, tm string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slotTakenLocked(date, tm), nil
}

// Create replica el índice único parcial sobre franjas activas.
func (r *reservationRepo) Create(_ context.Context, in repository.CreateReservationInput) (*repository.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slotTakenLocked(in.Date, in.Time) {
		return nil, repository.ErrConflict
	}
	res := repository.Reservation{
		ID:              newID(),
		UserID:          in.UserID,
		Date:            in.Date,
		Time:            in.Time,
		MeetingType:     in.MeetingType,
		ProjectType:     in.ProjectType,
		EstimatedBudget: in.EstimatedBudget,
		Message:         in.Message,
		Status:          repository.ReservationPending,
		CreatedAt:       r.now(),
	}
	r.reservations[res.ID] = res
	return &res, nil
}

func (r *reservationRepo) GetByID(_ context.Context, id string) (*repository.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	res = r.withUser(res)
	return &res, nil
}

func (r *reservationRepo) sorted(match func(repository.Reservation) bool) []repository.Reservation {
	out := []repository.Reservation{}
	for _, res := range r.reservations {
		if match(res) {
			out = append(out, r.withUser(res))
		}
	}
	// fecha DESC, hora DESC
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time > out[j].Time
	})
	return out
}

func (r *reservationRepo) ListByUser(_ context.Context, userID string) ([]repository.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(res repository.Reservation) bool { return res.UserID == userID }), nil
}

func (r *reservationRepo) List(_ context.Context, f repository.ReservationFilter) ([]repository.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(res repository.Reservation) bool {
		return (f.Date == "" || res.Date == f.Date) && (f.Status == "" || res.Status == f.Status)
	}), nil
}

func (r *reservationRepo) UpdateStatus(_ context.Context, id, status string) (*repository.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	res.Status = status
	r.reservations[id] = res
	return &res, nil
}

func (r *reservationRepo) Cancel(_ context.Context, id string, at time.Time) (*repository.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	res.Status = repository.ReservationCancelled
	res.CancelledAt = &at
	r.reservations[id] = res
	return &res, nil
}
