package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// ReservationRepo owns the reserve/cancel protocol for seats. Both mutating
// operations run as a single transaction with a row lock on the target
// record, so concurrent callers serialize on the database: exactly one
// reserver observes AVAILABLE and wins, everyone else gets
// ErrSeatUnavailable. The repository holds no state besides the pooled
// handle; seat status is always re-read inside the transaction that acts on
// it, never checked in a separate call.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for handlers that need to span
// repositories in one transaction (showtime provisioning).
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// Reserve claims the seat_availability row for userID and returns the new
// reservation id.
//
// Protocol, all inside one transaction:
//  1. lock the seat row with SELECT ... FOR UPDATE
//  2. missing row            -> ErrSeatNotFound
//  3. status != AVAILABLE    -> ErrSeatUnavailable (the race was lost)
//  4. insert the ACTIVE reservation, flip the seat to RESERVED
//  5. commit; any failure rolls everything back
//
// Nothing is visible to other callers until the commit, and the lock is
// released on commit, rollback or connection teardown.
func (r *ReservationRepo) Reserve(ctx context.Context, userID, seatAvailabilityID uint64) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM seat_availability WHERE id = ? FOR UPDATE`,
		seatAvailabilityID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSeatNotFound
	}
	if err != nil {
		return 0, err
	}
	if status != model.SeatStatusAvailable {
		return 0, ErrSeatUnavailable
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (user_id, seat_availability_id, status) VALUES (?, ?, ?)`,
		userID, seatAvailabilityID, model.ReservationStatusActive,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE seat_availability SET status = ? WHERE id = ?`,
		model.SeatStatusReserved, seatAvailabilityID,
	); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// Cancel soft-cancels a reservation and frees its seat, returning the id of
// the seat_availability row that went back to AVAILABLE. The reservation row
// is locked first, so a concurrent cancel of the same reservation serializes
// and the second caller sees ErrReservationNotActive. Only the owning user
// or an admin may cancel; the ownership check happens after the lock, on the
// row values the transaction will act on.
func (r *ReservationRepo) Cancel(ctx context.Context, callerID uint64, isAdmin bool, reservationID uint64) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		ownerID uint64
		seatID  uint64
		status  string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, seat_availability_id, status FROM reservations WHERE id = ? FOR UPDATE`,
		reservationID,
	).Scan(&ownerID, &seatID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrReservationNotFound
	}
	if err != nil {
		return 0, err
	}
	if ownerID != callerID && !isAdmin {
		return 0, ErrForbidden
	}
	if status != model.ReservationStatusActive {
		return 0, ErrReservationNotActive
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ?`,
		model.ReservationStatusCancelled, reservationID,
	); err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE seat_availability SET status = ? WHERE id = ?`,
		model.SeatStatusAvailable, seatID,
	); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return seatID, nil
}

// ReservationDetail is the row shape returned by the history listings. It
// joins the reservation with its seat, showtime, movie and room so clients
// do not have to stitch the catalog together themselves.
type ReservationDetail struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	Status     string    `json:"status"`
	SeatLabel  string    `json:"seat_label"`
	RoomName   string    `json:"room_name"`
	MovieTitle string    `json:"movie_title"`
	StartsAt   time.Time `json:"starts_at"`
	ShowtimeID uint64    `json:"showtime_id"`
	CreatedAt  time.Time `json:"created_at"`
}

const reservationDetailQuery = `
SELECT r.id, r.user_id, r.status,
       CONCAT(se.row_label, se.seat_number),
       ro.name, m.title, st.starts_at, st.id, r.created_at
FROM reservations r
JOIN seat_availability sa ON sa.id = r.seat_availability_id
JOIN seats se            ON se.id = sa.seat_id
JOIN showtimes st        ON st.id = sa.showtime_id
JOIN movies m            ON m.id = st.movie_id
JOIN rooms ro            ON ro.id = st.room_id`

// ListByUser returns the reservation history for one user, newest first.
// An empty history yields an empty slice, not an error.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		reservationDetailQuery+` WHERE r.user_id = ? ORDER BY r.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservationDetails(rows)
}

// ListByShowtime returns every reservation touching a showtime. Used by the
// admin view.
func (r *ReservationRepo) ListByShowtime(ctx context.Context, showtimeID uint64) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		reservationDetailQuery+` WHERE st.id = ? ORDER BY r.created_at DESC`, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservationDetails(rows)
}

func scanReservationDetails(rows *sql.Rows) ([]ReservationDetail, error) {
	details := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.Status,
			&d.SeatLabel, &d.RoomName, &d.MovieTitle,
			&d.StartsAt, &d.ShowtimeID, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
