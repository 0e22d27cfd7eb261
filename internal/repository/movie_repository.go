package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// ErrMovieNotFound indicates that a movie was not located in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepo manages persistence for the movie catalog.
type MovieRepo struct {
	db *sql.DB
}

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieColumns = "id, title, genre, duration_min, rating, poster_url, created_at, updated_at"

func scanMovie(row interface{ Scan(...interface{}) error }) (model.Movie, error) {
	var m model.Movie
	var poster sql.NullString
	err := row.Scan(&m.ID, &m.Title, &m.Genre, &m.DurationMin, &m.Rating, &poster, &m.CreatedAt, &m.UpdatedAt)
	if poster.Valid {
		p := poster.String
		m.PosterURL = &p
	}
	return m, err
}

// Create inserts a movie and populates the generated ID and timestamps.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO movies (title, genre, duration_min, rating, poster_url) VALUES (?, ?, ?, ?, ?)`,
		m.Title, m.Genre, m.DurationMin, m.Rating, m.PosterURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	fresh, err := scanMovie(r.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, m.ID))
	if err != nil {
		return err
	}
	*m = fresh
	return nil
}

// GetByID returns one movie or ErrMovieNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns the whole catalog ordered by title.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

// Update rewrites the mutable fields of a movie. Returns ErrMovieNotFound
// when no row matched.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE movies SET title=?, genre=?, duration_min=?, rating=?, poster_url=? WHERE id=?`,
		m.Title, m.Genre, m.DurationMin, m.Rating, m.PosterURL, m.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// Delete removes a movie. Showtimes reference movies with RESTRICT, so the
// driver surfaces a constraint error when screenings still exist; callers
// translate that to ErrConflict.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id=?`, id)
	if err != nil {
		if isForeignKeyErr(err) {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMovieNotFound
	}
	return nil
}
