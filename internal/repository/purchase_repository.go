package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/utils"
)

// PurchaseRepo finalizes reservations into purchases, tickets and payment
// records. Like the reservation protocol, Create runs as one transaction
// with a lock on the reservation row so that two concurrent purchases of the
// same reservation serialize and the second one fails cleanly.
type PurchaseRepo struct {
	db *sql.DB
}

func NewPurchaseRepo(db *sql.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

// PurchaseResult is returned by Create with everything the client needs to
// render a receipt.
type PurchaseResult struct {
	PurchaseID  uint64  `json:"purchase_id"`
	TicketCode  string  `json:"ticket_code"`
	TotalCents  uint32  `json:"total_cents"`
	PromotionID *uint64 `json:"promotion_id,omitempty"`
}

// ApplyDiscount returns the price after subtracting a percentage discount,
// rounding down to whole cents. Percent values above 100 clamp to free.
func ApplyDiscount(baseCents uint32, percent uint8) uint32 {
	if percent >= 100 {
		return 0
	}
	return baseCents - baseCents*uint32(percent)/100
}

// Create purchases an ACTIVE reservation owned by callerID (admins may
// purchase on behalf of anyone). The optional promoCode applies a discount
// when it names a promotion valid right now. One transaction covers the
// reservation lock, the duplicate check, and the purchase/ticket/payment
// inserts; a failure at any step leaves no partial receipt behind.
func (r *PurchaseRepo) Create(ctx context.Context, callerID uint64, isAdmin bool, reservationID uint64, promoCode, method, reference string) (*PurchaseResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		ownerID uint64
		status  string
		seatID  uint64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, status, seat_availability_id FROM reservations WHERE id = ? FOR UPDATE`,
		reservationID,
	).Scan(&ownerID, &status, &seatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	if ownerID != callerID && !isAdmin {
		return nil, ErrForbidden
	}
	if status != model.ReservationStatusActive {
		return nil, ErrReservationNotActive
	}

	// A reservation carries at most one purchase.
	var existing uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM purchases WHERE reservation_id = ?`, reservationID,
	).Scan(&existing)
	if err == nil {
		return nil, ErrAlreadyPurchased
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var baseCents uint32
	err = tx.QueryRowContext(ctx,
		`SELECT st.base_price_cents
		 FROM seat_availability sa
		 JOIN showtimes st ON st.id = sa.showtime_id
		 WHERE sa.id = ?`, seatID,
	).Scan(&baseCents)
	if err != nil {
		return nil, err
	}

	total := baseCents
	var promotionID *uint64
	if promoCode != "" {
		var (
			pid     uint64
			percent uint8
		)
		err = tx.QueryRowContext(ctx,
			`SELECT id, discount_percent FROM promotions
			 WHERE code = ? AND starts_at <= UTC_TIMESTAMP() AND ends_at >= UTC_TIMESTAMP()`,
			promoCode,
		).Scan(&pid, &percent)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPromotionNotFound
		}
		if err != nil {
			return nil, err
		}
		total = ApplyDiscount(baseCents, percent)
		promotionID = &pid
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO purchases (user_id, reservation_id, promotion_id, total_cents) VALUES (?, ?, ?, ?)`,
		ownerID, reservationID, promotionID, total)
	if err != nil {
		return nil, err
	}
	purchaseID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	code, err := utils.RandomCode(16)
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO tickets (purchase_id, code) VALUES (?, ?)`,
		purchaseID, code); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO payments (purchase_id, method, reference, amount_cents) VALUES (?, ?, ?, ?)`,
		purchaseID, method, reference, total); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &PurchaseResult{
		PurchaseID:  uint64(purchaseID),
		TicketCode:  code,
		TotalCents:  total,
		PromotionID: promotionID,
	}, nil
}

// PurchaseDetail is one row of the purchase history.
type PurchaseDetail struct {
	ID            uint64    `json:"id"`
	UserID        uint64    `json:"user_id"`
	ReservationID uint64    `json:"reservation_id"`
	TotalCents    uint32    `json:"total_cents"`
	TicketCode    string    `json:"ticket_code"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
}

const purchaseDetailQuery = `
SELECT p.id, p.user_id, p.reservation_id, p.total_cents, t.code, pay.method, p.created_at
FROM purchases p
JOIN tickets t    ON t.purchase_id = p.id
JOIN payments pay ON pay.purchase_id = p.id`

// ListByUser returns the caller's purchases, newest first.
func (r *PurchaseRepo) ListByUser(ctx context.Context, userID uint64) ([]PurchaseDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		purchaseDetailQuery+` WHERE p.user_id = ? ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPurchaseDetails(rows)
}

// ListAll returns every purchase. Admin only; enforced at the handler.
func (r *PurchaseRepo) ListAll(ctx context.Context) ([]PurchaseDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		purchaseDetailQuery+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPurchaseDetails(rows)
}

// GetByID returns one purchase. Non-admin callers only see their own rows;
// someone else's purchase surfaces as ErrForbidden.
func (r *PurchaseRepo) GetByID(ctx context.Context, callerID uint64, isAdmin bool, id uint64) (*PurchaseDetail, error) {
	var d PurchaseDetail
	err := r.db.QueryRowContext(ctx, purchaseDetailQuery+` WHERE p.id = ?`, id).Scan(
		&d.ID, &d.UserID, &d.ReservationID, &d.TotalCents, &d.TicketCode, &d.PaymentMethod, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	if d.UserID != callerID && !isAdmin {
		return nil, ErrForbidden
	}
	return &d, nil
}

func scanPurchaseDetails(rows *sql.Rows) ([]PurchaseDetail, error) {
	details := make([]PurchaseDetail, 0)
	for rows.Next() {
		var d PurchaseDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.ReservationID, &d.TotalCents, &d.TicketCode, &d.PaymentMethod, &d.CreatedAt); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
