package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// AvailabilityRepo manages the seat_availability table outside of the
// reservation protocol itself: provisioning rows when a showtime is created,
// tearing them down when it is deleted, and the public read of a showtime's
// seat grid. Status flips stay in ReservationRepo where they happen under a
// row lock.
type AvailabilityRepo struct {
	db *sql.DB
}

// NewAvailabilityRepo constructs an AvailabilityRepo given a DB handle.
func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

// ProvisionForShowtimeTx inserts one AVAILABLE row per seat in a single
// statement, within the caller's transaction so a failed showtime create
// leaves no orphan rows. Passing an empty slice has no effect.
func (r *AvailabilityRepo) ProvisionForShowtimeTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := `INSERT INTO seat_availability (seat_id, showtime_id, status) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*3)
	for i, sid := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, sid, showtimeID, model.SeatStatusAvailable)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// SeatStatusRow is one entry of the public seat grid for a showtime.
type SeatStatusRow struct {
	ID         uint64 `json:"seat_availability_id"`
	SeatID     uint64 `json:"seat_id"`
	RowLabel   string `json:"row_label"`
	SeatNumber uint32 `json:"seat_number"`
	Status     string `json:"status"`
}

// ListByShowtime returns the seat grid of a showtime ordered by row and
// number. The read is deliberately not transactional: it is a preview, and
// the authoritative check happens again under lock inside Reserve.
func (r *AvailabilityRepo) ListByShowtime(ctx context.Context, showtimeID uint64) ([]SeatStatusRow, error) {
	const q = `SELECT sa.id, se.id, se.row_label, se.seat_number, sa.status
	           FROM seat_availability sa
	           JOIN seats se ON se.id = sa.seat_id
	           WHERE sa.showtime_id = ?
	           ORDER BY se.row_label, se.seat_number`
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	grid := make([]SeatStatusRow, 0)
	for rows.Next() {
		var s SeatStatusRow
		if err := rows.Scan(&s.ID, &s.SeatID, &s.RowLabel, &s.SeatNumber, &s.Status); err != nil {
			return nil, err
		}
		grid = append(grid, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return grid, nil
}

// CountActiveReservationsTx counts ACTIVE reservations against a showtime.
// Showtime deletion uses this inside its transaction to refuse removal while
// seats are held.
func (r *AvailabilityRepo) CountActiveReservationsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) (int64, error) {
	const q = `SELECT COUNT(*)
	           FROM reservations re
	           JOIN seat_availability sa ON sa.id = re.seat_availability_id
	           WHERE sa.showtime_id = ? AND re.status = ?`
	var n int64
	err := tx.QueryRowContext(ctx, q, showtimeID, model.ReservationStatusActive).Scan(&n)
	return n, err
}

// DeleteByShowtimeTx removes all availability rows of a showtime within the
// caller's transaction. The caller must have verified there are no active
// reservations first.
func (r *AvailabilityRepo) DeleteByShowtimeTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM seat_availability WHERE showtime_id = ?`, showtimeID)
	return err
}
