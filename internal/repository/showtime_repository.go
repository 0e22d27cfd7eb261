package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// ErrShowtimeNotFound indicates that a showtime was not located in the DB.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ShowtimeRepo manages persistence for scheduled screenings.
type ShowtimeRepo struct {
	db *sql.DB
}

func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// DB exposes the underlying handle so handlers can run the showtime insert
// and the seat_availability provisioning in one transaction.
func (r *ShowtimeRepo) DB() *sql.DB { return r.db }

const showtimeColumns = "id, movie_id, room_id, starts_at, base_price_cents, status, created_at, updated_at"

func scanShowtime(row interface{ Scan(...interface{}) error }) (model.Showtime, error) {
	var s model.Showtime
	err := row.Scan(&s.ID, &s.MovieID, &s.RoomID, &s.StartsAt, &s.BasePriceCents, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// CreateTx inserts a showtime within the caller's transaction and populates
// the generated ID plus DB defaults on the struct.
func (r *ShowtimeRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Showtime) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO showtimes (movie_id, room_id, starts_at, base_price_cents) VALUES (?, ?, ?, ?)`,
		s.MovieID, s.RoomID, s.StartsAt.UTC(), s.BasePriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	fresh, err := scanShowtime(tx.QueryRowContext(ctx,
		`SELECT `+showtimeColumns+` FROM showtimes WHERE id = ?`, s.ID))
	if err != nil {
		return err
	}
	*s = fresh
	return nil
}

// GetByID returns one showtime or ErrShowtimeNotFound.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*model.Showtime, error) {
	s, err := scanShowtime(r.db.QueryRowContext(ctx,
		`SELECT `+showtimeColumns+` FROM showtimes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShowtimeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ShowtimeListing is the public view of a showtime, joined with movie and
// room names so the catalog endpoint answers in one round trip.
type ShowtimeListing struct {
	ID             uint64    `json:"id"`
	MovieID        uint64    `json:"movie_id"`
	MovieTitle     string    `json:"movie_title"`
	RoomName       string    `json:"room_name"`
	StartsAt       time.Time `json:"starts_at"`
	BasePriceCents uint32    `json:"base_price_cents"`
	AvailableSeats int64     `json:"available_seats"`
}

// ListUpcoming returns scheduled showtimes starting after now, soonest
// first, with a live count of their AVAILABLE seats. The count is advisory;
// Reserve re-checks under lock.
func (r *ShowtimeRepo) ListUpcoming(ctx context.Context) ([]ShowtimeListing, error) {
	const q = `SELECT st.id, m.id, m.title, ro.name, st.starts_at, st.base_price_cents,
	                  COALESCE(SUM(sa.status = 'AVAILABLE'), 0)
	           FROM showtimes st
	           JOIN movies m ON m.id = st.movie_id
	           JOIN rooms ro ON ro.id = st.room_id
	           LEFT JOIN seat_availability sa ON sa.showtime_id = st.id
	           WHERE st.starts_at > UTC_TIMESTAMP() AND st.status = 'SCHEDULED'
	           GROUP BY st.id, m.id, m.title, ro.name, st.starts_at, st.base_price_cents
	           ORDER BY st.starts_at`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	listings := make([]ShowtimeListing, 0)
	for rows.Next() {
		var l ShowtimeListing
		if err := rows.Scan(&l.ID, &l.MovieID, &l.MovieTitle, &l.RoomName, &l.StartsAt, &l.BasePriceCents, &l.AvailableSeats); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

// DeleteTx removes a showtime within the caller's transaction. The caller
// checks for active reservations and deletes availability rows first.
func (r *ShowtimeRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM showtimes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrShowtimeNotFound
	}
	return nil
}
