package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// ErrPromotionNotFound indicates the promotion code does not exist or is not
// currently valid.
var ErrPromotionNotFound = errors.New("promotion not found")

// PromotionRepo manages persistence for discount promotions.
type PromotionRepo struct {
	db *sql.DB
}

func NewPromotionRepo(db *sql.DB) *PromotionRepo { return &PromotionRepo{db: db} }

const promotionColumns = "id, code, description, discount_percent, starts_at, ends_at, created_at, updated_at"

func scanPromotion(row interface{ Scan(...interface{}) error }) (model.Promotion, error) {
	var p model.Promotion
	err := row.Scan(&p.ID, &p.Code, &p.Description, &p.DiscountPercent, &p.StartsAt, &p.EndsAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts a promotion and populates the generated ID and timestamps.
func (r *PromotionRepo) Create(ctx context.Context, p *model.Promotion) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO promotions (code, description, discount_percent, starts_at, ends_at) VALUES (?, ?, ?, ?, ?)`,
		p.Code, p.Description, p.DiscountPercent, p.StartsAt.UTC(), p.EndsAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	fresh, err := scanPromotion(r.db.QueryRowContext(ctx,
		`SELECT `+promotionColumns+` FROM promotions WHERE id = ?`, p.ID))
	if err != nil {
		return err
	}
	*p = fresh
	return nil
}

// List returns all promotions ordered by their validity window.
func (r *PromotionRepo) List(ctx context.Context) ([]model.Promotion, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+promotionColumns+` FROM promotions ORDER BY starts_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	promos := make([]model.Promotion, 0)
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return promos, nil
}

// Update rewrites the mutable fields of a promotion.
func (r *PromotionRepo) Update(ctx context.Context, p *model.Promotion) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE promotions SET code=?, description=?, discount_percent=?, starts_at=?, ends_at=? WHERE id=?`,
		p.Code, p.Description, p.DiscountPercent, p.StartsAt.UTC(), p.EndsAt.UTC(), p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPromotionNotFound
	}
	return nil
}

// Delete removes a promotion. Purchases keep their promotion_id via SET NULL
// so history is unaffected.
func (r *PromotionRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM promotions WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPromotionNotFound
	}
	return nil
}
