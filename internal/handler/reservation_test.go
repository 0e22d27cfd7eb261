package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

func newReservationHandler(t *testing.T) (*ReservationHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewReservationHandler(repository.NewReservationRepo(db)), mock
}

func post(t *testing.T, body string, userID float64, admin bool) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("is_admin", admin)
	return c, rec
}

func TestCreateReservationReturns201(t *testing.T) {
	h, mock := newReservationHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.SeatStatusAvailable))
	mock.ExpectExec(`INSERT INTO reservations`).
		WithArgs(uint64(7), uint64(42), model.ReservationStatusActive).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(`UPDATE seat_availability`).
		WithArgs(model.SeatStatusReserved, uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := post(t, `{"seat_availability_id":42}`, 7, false)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"status":"ACTIVE"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCreateReservationSeatTakenReturns409(t *testing.T) {
	h, mock := newReservationHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.SeatStatusReserved))
	mock.ExpectRollback()

	c, rec := post(t, `{"seat_availability_id":42}`, 7, false)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestCreateReservationMissingSeatReturns404(t *testing.T) {
	h, mock := newReservationHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(999)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	c, rec := post(t, `{"seat_availability_id":999}`, 7, false)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateReservationForAnotherUserReturns403(t *testing.T) {
	h, _ := newReservationHandler(t)

	c, rec := post(t, `{"user_id":8,"seat_availability_id":42}`, 7, false)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestCreateReservationAdminMayActForAnotherUser(t *testing.T) {
	h, mock := newReservationHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.SeatStatusAvailable))
	mock.ExpectExec(`INSERT INTO reservations`).
		WithArgs(uint64(8), uint64(42), model.ReservationStatusActive).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec(`UPDATE seat_availability`).
		WithArgs(model.SeatStatusReserved, uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := post(t, `{"user_id":8,"seat_availability_id":42}`, 1, true)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}

func TestCreateReservationBadBodyReturns400(t *testing.T) {
	h, _ := newReservationHandler(t)

	c, rec := post(t, `{"seat_availability_id":0}`, 7, false)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func deleteReq(t *testing.T, id string, userID float64, admin bool) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/v1/reservations/"+id, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/reservations/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	c.Set("user_id", userID)
	c.Set("is_admin", admin)
	return c, rec
}

func TestCancelReservationReturns200(t *testing.T) {
	h, mock := newReservationHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "seat_availability_id", "status"}).
			AddRow(7, 42, model.ReservationStatusActive))
	mock.ExpectExec(`UPDATE reservations`).
		WithArgs(model.ReservationStatusCancelled, uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE seat_availability`).
		WithArgs(model.SeatStatusAvailable, uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := deleteReq(t, "11", 7, false)
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"CANCELLED"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCancelSomeoneElsesReservationReturns403(t *testing.T) {
	h, mock := newReservationHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "seat_availability_id", "status"}).
			AddRow(7, 42, model.ReservationStatusActive))
	mock.ExpectRollback()

	c, rec := deleteReq(t, "11", 8, false)
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestCancelInactiveReservationReturns400(t *testing.T) {
	h, mock := newReservationHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "seat_availability_id", "status"}).
			AddRow(7, 42, model.ReservationStatusCancelled))
	mock.ExpectRollback()

	c, rec := deleteReq(t, "11", 7, false)
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCancelMissingReservationReturns404(t *testing.T) {
	h, mock := newReservationHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	c, rec := deleteReq(t, "404", 7, false)
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListByUserForbiddenForOtherUsers(t *testing.T) {
	h, _ := newReservationHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/reservations/user/8", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/reservations/user/:userId")
	c.SetParamNames("userId")
	c.SetParamValues("8")
	c.Set("user_id", float64(7))
	c.Set("is_admin", false)

	if err := h.ListByUser(c); err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
