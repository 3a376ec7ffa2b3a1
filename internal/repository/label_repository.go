package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todo-backend/internal/models"

	"github.com/lib/pq"
)

// LabelRepository serves the two label tables, categories and tags. Rows with
// a NULL user_id are shared defaults.
type LabelRepository struct {
	db       *sql.DB
	table    string
	notFound error
}

func NewCategoryRepository(db *sql.DB) *LabelRepository {
	return &LabelRepository{db: db, table: "categories", notFound: ErrCategoryNotFound}
}

func NewTagRepository(db *sql.DB) *LabelRepository {
	return &LabelRepository{db: db, table: "tags", notFound: ErrTagNotFound}
}

func scanLabel(row interface{ Scan(...interface{}) error }) (*models.Label, error) {
	var (
		l     models.Label
		owner sql.NullInt64
	)
	if err := row.Scan(&l.ID, &l.Name, &l.Color, &owner); err != nil {
		return nil, err
	}
	if owner.Valid {
		id := int(owner.Int64)
		l.UserID = &id
	}
	return &l, nil
}

// ListVisible returns the labels owned by userID plus the shared ones.
func (r *LabelRepository) ListVisible(ctx context.Context, userID int) ([]models.Label, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, color, user_id FROM `+r.table+`
		 WHERE user_id IS NULL OR user_id = $1
		 ORDER BY name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	defer rows.Close()

	labels := []models.Label{}
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table, err)
		}
		labels = append(labels, *l)
	}
	return labels, rows.Err()
}

func (r *LabelRepository) Get(ctx context.Context, id int) (*models.Label, error) {
	l, err := scanLabel(r.db.QueryRowContext(ctx,
		`SELECT id, name, color, user_id FROM `+r.table+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.notFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", r.table, id, err)
	}
	return l, nil
}

func (r *LabelRepository) Create(ctx context.Context, l *models.Label) error {
	if l.Color == "" {
		l.Color = models.DefaultColor
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO `+r.table+` (name, color, user_id) VALUES ($1, $2, $3) RETURNING id`,
		l.Name, l.Color, l.UserID,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("create %s: %w", r.table, translate(err))
	}
	return nil
}

func (r *LabelRepository) Update(ctx context.Context, l *models.Label) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE `+r.table+` SET name = $1, color = $2 WHERE id = $3`,
		l.Name, l.Color, l.ID)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", r.table, l.ID, err)
	}
	return affectedOrNotFound(res, r.notFound)
}

func (r *LabelRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", r.table, id, err)
	}
	return affectedOrNotFound(res, r.notFound)
}

// AllVisible reports whether every id in ids names a label visible to userID.
func (r *LabelRepository) AllVisible(ctx context.Context, userID int, ids []int) (bool, error) {
	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return true, nil
	}
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+r.table+`
		 WHERE id = ANY($1) AND (user_id IS NULL OR user_id = $2)`,
		unique, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check %s visibility: %w", r.table, err)
	}
	return n == len(unique), nil
}

func uniqueIDs(ids []int) pq.Int64Array {
	seen := make(map[int]struct{}, len(ids))
	out := make(pq.Int64Array, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, int64(id))
	}
	return out
}
