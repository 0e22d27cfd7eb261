package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestReserveLocksThenInsertsThenFlips(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM seat_availability WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.SeatStatusAvailable))
	mock.ExpectExec(`INSERT INTO reservations`).
		WithArgs(uint64(7), uint64(42), model.ReservationStatusActive).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(`UPDATE seat_availability SET status = \?`).
		WithArgs(model.SeatStatusReserved, uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := repo.Reserve(context.Background(), 7, 42)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if id != 11 {
		t.Fatalf("reservation id = %d, want 11", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveLostRaceRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	// The row is already RESERVED by the time the lock is acquired, which is
	// exactly what the loser of a concurrent reserve sees.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM seat_availability WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.SeatStatusReserved))
	mock.ExpectRollback()

	_, err := repo.Reserve(context.Background(), 7, 42)
	if !errors.Is(err, ErrSeatUnavailable) {
		t.Fatalf("err = %v, want ErrSeatUnavailable", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveMissingSeat(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM seat_availability WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(999)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Reserve(context.Background(), 7, 999)
	if !errors.Is(err, ErrSeatNotFound) {
		t.Fatalf("err = %v, want ErrSeatNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveInsertFailureRollsBackSeatFlip(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM seat_availability WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.SeatStatusAvailable))
	mock.ExpectExec(`INSERT INTO reservations`).
		WithArgs(uint64(7), uint64(42), model.ReservationStatusActive).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Reserve(context.Background(), 7, 42)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelFreesSeat(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id, seat_availability_id, status FROM reservations WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "seat_availability_id", "status"}).
			AddRow(7, 42, model.ReservationStatusActive))
	mock.ExpectExec(`UPDATE reservations SET status = \?`).
		WithArgs(model.ReservationStatusCancelled, uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE seat_availability SET status = \?`).
		WithArgs(model.SeatStatusAvailable, uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	seatID, err := repo.Cancel(context.Background(), 7, false, 11)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if seatID != 42 {
		t.Fatalf("freed seat id = %d, want 42", seatID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelByOtherUserForbidden(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id, seat_availability_id, status FROM reservations WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "seat_availability_id", "status"}).
			AddRow(7, 42, model.ReservationStatusActive))
	mock.ExpectRollback()

	_, err := repo.Cancel(context.Background(), 8, false, 11)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelByAdminAllowed(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id, seat_availability_id, status FROM reservations WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "seat_availability_id", "status"}).
			AddRow(7, 42, model.ReservationStatusActive))
	mock.ExpectExec(`UPDATE reservations SET status = \?`).
		WithArgs(model.ReservationStatusCancelled, uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE seat_availability SET status = \?`).
		WithArgs(model.SeatStatusAvailable, uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if _, err := repo.Cancel(context.Background(), 999, true, 11); err != nil {
		t.Fatalf("Cancel as admin: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelTwiceSecondSeesNotActive(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id, seat_availability_id, status FROM reservations WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "seat_availability_id", "status"}).
			AddRow(7, 42, model.ReservationStatusCancelled))
	mock.ExpectRollback()

	_, err := repo.Cancel(context.Background(), 7, false, 11)
	if !errors.Is(err, ErrReservationNotActive) {
		t.Fatalf("err = %v, want ErrReservationNotActive", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListByUserEmptyHistoryIsEmptySlice(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectQuery(`FROM reservations r`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "status", "seat", "room", "title", "starts_at", "showtime_id", "created_at",
		}))

	details, err := repo.ListByUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if details == nil || len(details) != 0 {
		t.Fatalf("details = %#v, want empty non-nil slice", details)
	}
}

func TestCancelMissingReservation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id, seat_availability_id, status FROM reservations WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Cancel(context.Background(), 7, false, 404)
	if !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("err = %v, want ErrReservationNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
