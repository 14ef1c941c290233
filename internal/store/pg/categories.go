package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

type categoryRepo struct {
	pool *pgxpool.Pool
}

const categoryColumns = `c.id, c.name, c.description, c.icon, c.display_order, c.is_active, c.created_at`

func scanCategory(row rowScanner, extra ...any) (*repository.Category, error) {
	var c repository.Category
	dest := []any{&c.ID, &c.Name, &c.Description, &c.Icon, &c.DisplayOrder, &c.IsActive, &c.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context, limit int) ([]repository.Category, int, error) {
	if limit <= 0 {
		limit = 50
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, 0, err
	}

	const q = `
		SELECT ` + categoryColumns + `,
		       (SELECT COUNT(*) FROM dishes d WHERE d.category_id = c.id)
		FROM categories c
		ORDER BY c.display_order ASC, c.name ASC
		LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []repository.Category{}
	for rows.Next() {
		var n int
		c, err := scanCategory(rows, &n)
		if err != nil {
			return nil, 0, err
		}
		c.DishCount = n
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*repository.Category, error) {
	const q = `
		SELECT ` + categoryColumns + `,
		       (SELECT COUNT(*) FROM dishes d WHERE d.category_id = c.id)
		FROM categories c WHERE c.id = $1`
	var n int
	c, err := scanCategory(r.pool.QueryRow(ctx, q, id), &n)
	if err != nil {
		return nil, err
	}
	c.DishCount = n
	return c, nil
}

func (r *categoryRepo) ListDishes(ctx context.Context, categoryID string) ([]repository.Dish, error) {
	const q = `
		SELECT id, category_id, name, description, price::float8, is_available
		FROM dishes
		WHERE category_id = $1 AND is_available = true
		ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, q, categoryID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []repository.Dish{}
	for rows.Next() {
		var d repository.Dish
		if err := rows.Scan(&d.ID, &d.CategoryID, &d.Name, &d.Description, &d.Price, &d.IsAvailable); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *categoryRepo) Create(ctx context.Context, in repository.CreateCategoryInput) (*repository.Category, error) {
	const q = `
		INSERT INTO categories AS c (name, description, icon, display_order)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + categoryColumns
	return scanCategory(r.pool.QueryRow(ctx, q, in.Name, in.Description, in.Icon, in.DisplayOrder))
}

func (r *categoryRepo) Update(ctx context.Context, id string, in repository.UpdateCategoryInput) (*repository.Category, error) {
	const q = `
		UPDATE categories AS c SET
			name          = COALESCE($2, c.name),
			description   = COALESCE($3, c.description),
			icon          = COALESCE($4, c.icon),
			display_order = COALESCE($5, c.display_order),
			is_active     = COALESCE($6, c.is_active),
			updated_at    = now()
		WHERE c.id = $1
		RETURNING ` + categoryColumns
	return scanCategory(r.pool.QueryRow(ctx, q, id, in.Name, in.Description, in.Icon, in.DisplayOrder, in.IsActive))
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM dishes WHERE category_id = $1`, id).Scan(&n); err != nil {
		return mapErr(err)
	}
	if n > 0 {
		return repository.ErrInUse
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
