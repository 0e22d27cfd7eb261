package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// ErrSeatRowNotFound indicates that a physical seat was not located.
var ErrSeatRowNotFound = errors.New("seat not found")

// SeatRepo manages persistence for physical seats within rooms.
type SeatRepo struct {
	db *sql.DB
}

func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// CreateBulk inserts multiple seats for a room in one statement. Used by the
// admin grid provisioning endpoint. Passing an empty slice has no effect.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (room_id, row_label, seat_number, is_active) VALUES `
	args := make([]interface{}, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, s.RoomID, s.RowLabel, s.SeatNumber, s.IsActive)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// GetByRoom returns all seats of a room ordered by row and number.
func (r *SeatRepo) GetByRoom(ctx context.Context, roomID uint64) ([]model.Seat, error) {
	const q = `SELECT id, room_id, row_label, seat_number, is_active, created_at, updated_at
	           FROM seats WHERE room_id = ? ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.RoomID, &s.RowLabel, &s.SeatNumber, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// ActiveIDsByRoomTx returns the ids of the room's active seats inside the
// caller's transaction. Showtime creation uses this list to provision
// availability rows atomically with the showtime insert.
func (r *SeatRepo) ActiveIDsByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM seats WHERE room_id = ? AND is_active = TRUE`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// SetActive toggles a seat's active flag. Existing availability rows are not
// touched; the flag only affects future showtime provisioning.
func (r *SeatRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE seats SET is_active=? WHERE id=?`, active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSeatRowNotFound
	}
	return nil
}

// DeleteByRoom removes all seats of a room. Fails with ErrConflict while
// seat_availability rows still reference them.
func (r *SeatRepo) DeleteByRoom(ctx context.Context, roomID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM seats WHERE room_id=?`, roomID)
	if isForeignKeyErr(err) {
		return ErrConflict
	}
	return err
}
