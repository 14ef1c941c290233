package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

type reservationRepo struct {
	pool *pgxpool.Pool
}

// Fecha y hora viajan como texto: "YYYY-MM-DD" y "HH24:MI".
const reservationColumns = `r.id, r.user_id, to_char(r.reservation_date, 'YYYY-MM-DD'), to_char(r.reservation_time, 'HH24:MI'),
	r.meeting_type, r.project_type, r.estimated_budget, r.message, r.status, r.cancelled_at, r.created_at`

const reservationUserColumns = `, u.email, u.firstname, u.lastname`

func scanReservation(row rowScanner, withUser bool) (*repository.Reservation, error) {
	var res repository.Reservation
	dest := []any{
		&res.ID, &res.UserID, &res.Date, &res.Time,
		&res.MeetingType, &res.ProjectType, &res.EstimatedBudget, &res.Message, &res.Status, &res.CancelledAt, &res.CreatedAt,
	}
	if withUser {
		dest = append(dest, &res.UserEmail, &res.UserFirstname, &res.UserLastname)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, mapErr(err)
	}
	return &res, nil
}

func (r *reservationRepo) SlotTaken(ctx context.Context, date, tm string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE reservation_date = $1::date AND reservation_time = $2::time
			  AND status IN ('pending', 'confirmed')
		)`
	var taken bool
	if err := r.pool.QueryRow(ctx, q, date, tm).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

func (r *reservationRepo) Create(ctx context.Context, in repository.CreateReservationInput) (*repository.Reservation, error) {
	// uq_reservations_active_slot rechaza con 23505 → ErrConflict
	const q = `
		INSERT INTO reservations AS r (user_id, reservation_date, reservation_time, meeting_type,
			project_type, estimated_budget, message, status)
		VALUES ($1, $2::date, $3::time, $4, $5, $6, $7, 'pending')
		RETURNING ` + reservationColumns
	return scanReservation(r.pool.QueryRow(ctx, q,
		in.UserID, in.Date, in.Time, in.MeetingType, in.ProjectType, in.EstimatedBudget, in.Message), false)
}

func (r *reservationRepo) GetByID(ctx context.Context, id string) (*repository.Reservation, error) {
	q := `SELECT ` + reservationColumns + reservationUserColumns + `
		FROM reservations r JOIN users u ON u.id = r.user_id
		WHERE r.id = $1`
	return scanReservation(r.pool.QueryRow(ctx, q, id), true)
}

func (r *reservationRepo) ListByUser(ctx context.Context, userID string) ([]repository.Reservation, error) {
	q := `SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.user_id = $1
		ORDER BY r.reservation_date DESC, r.reservation_time DESC`
	return r.query(ctx, q, false, userID)
}

func (r *reservationRepo) List(ctx context.Context, f repository.ReservationFilter) ([]repository.Reservation, error) {
	var (
		where []string
		args  []any
	)
	if f.Date != "" {
		args = append(args, f.Date)
		where = append(where, fmt.Sprintf("r.reservation_date = $%d::date", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("r.status = $%d", len(args)))
	}
	q := `SELECT ` + reservationColumns + reservationUserColumns + `
		FROM reservations r JOIN users u ON u.id = r.user_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY r.reservation_date DESC, r.reservation_time DESC"
	return r.query(ctx, q, true, args...)
}

func (r *reservationRepo) query(ctx context.Context, q string, withUser bool, args ...any) ([]repository.Reservation, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []repository.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows, withUser)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func (r *reservationRepo) UpdateStatus(ctx context.Context, id, status string) (*repository.Reservation, error) {
	const q = `
		UPDATE reservations AS r SET status = $2, updated_at = now()
		WHERE r.id = $1
		RETURNING ` + reservationColumns
	return scanReservation(r.pool.QueryRow(ctx, q, id, status), false)
}

func (r *reservationRepo) Cancel(ctx context.Context, id string, at time.Time) (*repository.Reservation, error) {
	const q = `
		UPDATE reservations AS r SET status = 'cancelled', cancelled_at = $2, updated_at = now()
		WHERE r.id = $1
		RETURNING ` + reservationColumns
	return scanReservation(r.pool.QueryRow(ctx, q, id, at), false)
}
