package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

type contactRepo struct {
	pool *pgxpool.Pool
}

const contactColumns = `m.id, m.name, m.email, m.phone, m.subject, m.message, m.status, m.priority,
	m.assigned_to, m.read_at, m.replied_at, m.replied_by, m.created_at`

func scanContact(row rowScanner, extra ...any) (*repository.ContactMessage, error) {
	var m repository.ContactMessage
	dest := []any{
		&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &m.Status, &m.Priority,
		&m.AssignedTo, &m.ReadAt, &m.RepliedAt, &m.RepliedBy, &m.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (r *contactRepo) Create(ctx context.Context, in repository.CreateContactInput) (*repository.ContactMessage, error) {
	prio := in.Priority
	if prio == "" {
		prio = repository.PriorityNormal
	}
	const q = `
		INSERT INTO contact_messages AS m (name, email, phone, subject, message, status, priority)
		VALUES ($1, $2, $3, $4, $5, 'new', $6)
		RETURNING ` + contactColumns
	return scanContact(r.pool.QueryRow(ctx, q, in.Name, in.Email, in.Phone, in.Subject, in.Message, prio))
}

func (r *contactRepo) GetByID(ctx context.Context, id string) (*repository.ContactMessage, error) {
	q := `SELECT ` + contactColumns + `, u.firstname, u.lastname, u.email
		FROM contact_messages m
		LEFT JOIN users u ON u.id = m.assigned_to
		WHERE m.id = $1`
	var fn, ln, em *string
	m, err := scanContact(r.pool.QueryRow(ctx, q, id), &fn, &ln, &em)
	if err != nil {
		return nil, err
	}
	m.AssignedFirstname, m.AssignedLastname, m.AssignedEmail = fn, ln, em
	return m, nil
}

func (r *contactRepo) List(ctx context.Context, f repository.ContactFilter) ([]repository.ContactMessage, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("m.status = $%d", len(args)))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		where = append(where, fmt.Sprintf("m.priority = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(m.name ILIKE $%d OR m.email ILIKE $%d OR m.subject ILIKE $%d OR m.message ILIKE $%d)", n, n, n, n))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages m`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	q := `SELECT ` + contactColumns + `,
			(SELECT COUNT(*) FROM contact_message_replies cr WHERE cr.message_id = m.id)
		FROM contact_messages m` + cond + `
		ORDER BY CASE m.priority
			WHEN 'urgent' THEN 1 WHEN 'high' THEN 2 WHEN 'normal' THEN 3 WHEN 'low' THEN 4 END,
			m.created_at DESC
		LIMIT $` + fmt.Sprint(len(args)-1) + ` OFFSET $` + fmt.Sprint(len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []repository.ContactMessage{}
	for rows.Next() {
		var replies int
		m, err := scanContact(rows, &replies)
		if err != nil {
			return nil, 0, err
		}
		m.ReplyCount = replies
		out = append(out, *m)
	}
	return out, total, rows.Err()
}

func (r *contactRepo) Update(ctx context.Context, id string, in repository.UpdateContactInput) (*repository.ContactMessage, error) {
	var (
		sets []string
		args = []any{id}
	)
	if in.Status != nil {
		args = append(args, *in.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
		if *in.Status == repository.ContactStatusRead || *in.Status == repository.ContactStatusReplied {
			sets = append(sets, "read_at = COALESCE(read_at, now())")
		}
	}
	if in.Priority != nil {
		args = append(args, *in.Priority)
		sets = append(sets, fmt.Sprintf("priority = $%d", len(args)))
	}
	if in.AssignedTo != nil {
		args = append(args, nullIfEmpty(*in.AssignedTo))
		sets = append(sets, fmt.Sprintf("assigned_to = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil, repository.ErrInvalidInput
	}
	sets = append(sets, "updated_at = now()")

	q := `UPDATE contact_messages AS m SET ` + strings.Join(sets, ", ") + ` WHERE m.id = $1 RETURNING ` + contactColumns
	return scanContact(r.pool.QueryRow(ctx, q, args...))
}

func (r *contactRepo) Archive(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE contact_messages SET status = 'archived', updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *contactRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM contact_message_replies WHERE message_id = $1`, id); err != nil {
		return mapErr(err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *contactRepo) Stats(ctx context.Context) (*repository.ContactStats, error) {
	const q = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'new'),
		       COUNT(*) FILTER (WHERE status = 'read'),
		       COUNT(*) FILTER (WHERE status = 'replied'),
		       COUNT(*) FILTER (WHERE priority = 'urgent'),
		       COUNT(*) FILTER (WHERE created_at >= now() - INTERVAL '7 days'),
		       COUNT(*) FILTER (WHERE created_at >= now() - INTERVAL '30 days')
		FROM contact_messages
		WHERE status <> 'archived'`
	var s repository.ContactStats
	err := r.pool.QueryRow(ctx, q).Scan(&s.Total, &s.NewMessages, &s.Read, &s.Replied, &s.Urgent, &s.ThisWeek, &s.ThisMonth)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ─── replies ───

func (r *contactRepo) ListReplies(ctx context.Context, messageID string) ([]repository.ContactReply, error) {
	const q = `
		SELECT cr.id, cr.message_id, cr.admin_id, cr.reply_text, cr.created_at, u.firstname, u.lastname, u.email
		FROM contact_message_replies cr
		JOIN users u ON u.id = cr.admin_id
		WHERE cr.message_id = $1
		ORDER BY cr.created_at ASC`
	rows, err := r.pool.Query(ctx, q, messageID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []repository.ContactReply{}
	for rows.Next() {
		var rp repository.ContactReply
		if err := rows.Scan(&rp.ID, &rp.MessageID, &rp.AdminID, &rp.ReplyText, &rp.CreatedAt,
			&rp.AdminFirstname, &rp.AdminLastname, &rp.AdminEmail); err != nil {
			return nil, err
		}
		out = append(out, rp)
	}
	return out, rows.Err()
}

func (r *contactRepo) AddReply(ctx context.Context, messageID, adminID, text string) (*repository.ContactReply, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM contact_messages WHERE id = $1)`, messageID).Scan(&exists); err != nil {
		return nil, mapErr(err)
	}
	if !exists {
		return nil, repository.ErrNotFound
	}

	var rp repository.ContactReply
	err = tx.QueryRow(ctx, `
		INSERT INTO contact_message_replies (message_id, admin_id, reply_text)
		VALUES ($1, $2, $3)
		RETURNING id, message_id, admin_id, reply_text, created_at`,
		messageID, adminID, text,
	).Scan(&rp.ID, &rp.MessageID, &rp.AdminID, &rp.ReplyText, &rp.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE contact_messages
		SET status = 'replied', replied_at = now(), replied_by = $2,
		    read_at = COALESCE(read_at, now()), updated_at = now()
		WHERE id = $1`, messageID, adminID); err != nil {
		return nil, mapErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &rp, nil
}
