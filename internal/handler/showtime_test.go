package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

func newShowtimeHandler(t *testing.T) (*ShowtimeHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	h := NewShowtimeHandler(
		repository.NewShowtimeRepo(db),
		repository.NewMovieRepo(db),
		repository.NewRoomRepo(db),
		repository.NewSeatRepo(db),
		repository.NewAvailabilityRepo(db),
	)
	return h, mock
}

func TestCreateShowtimeProvisionsSeatsAtomically(t *testing.T) {
	h, mock := newShowtimeHandler(t)
	now := time.Now().UTC()
	startsAt := now.Add(48 * time.Hour)

	mock.ExpectQuery(`SELECT id, title, genre, duration_min, rating, poster_url, created_at, updated_at FROM movies`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "genre", "duration_min", "rating", "poster_url", "created_at", "updated_at"}).
			AddRow(3, "Heat", "Crime", 170, "R", nil, now, now))
	mock.ExpectQuery(`SELECT id, name, created_at, updated_at FROM rooms`).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(2, "Room 2", now, now))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO showtimes`).
		WithArgs(uint64(3), uint64(2), sqlmock.AnyArg(), uint32(1500)).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery(`SELECT id, movie_id, room_id, starts_at, base_price_cents, status, created_at, updated_at FROM showtimes`).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "movie_id", "room_id", "starts_at", "base_price_cents", "status", "created_at", "updated_at"}).
			AddRow(5, 3, 2, startsAt, 1500, "SCHEDULED", now, now))
	mock.ExpectQuery(`SELECT id FROM seats WHERE room_id = \? AND is_active = TRUE`).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101).AddRow(102).AddRow(103))
	mock.ExpectExec(`INSERT INTO seat_availability`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	body := `{"movie_id":3,"room_id":2,"starts_at":"` + startsAt.Format(time.RFC3339) + `","base_price_cents":1500}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/showtimes", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"seats_provisioned":3`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateShowtimeInPastRejected(t *testing.T) {
	h, _ := newShowtimeHandler(t)

	body := `{"movie_id":3,"room_id":2,"starts_at":"2020-01-01T20:00:00Z","base_price_cents":1500}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/showtimes", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteShowtimeWithActiveReservationsConflicts(t *testing.T) {
	h, mock := newShowtimeHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(uint64(5), "ACTIVE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/v1/admin/showtimes/5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/admin/showtimes/:id")
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteShowtimeRemovesAvailabilityFirst(t *testing.T) {
	h, mock := newShowtimeHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(uint64(5), "ACTIVE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM seat_availability WHERE showtime_id = \?`).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 48))
	mock.ExpectExec(`DELETE FROM showtimes WHERE id = \?`).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/v1/admin/showtimes/5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/admin/showtimes/:id")
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
