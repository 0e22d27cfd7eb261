package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

func TestApplyDiscount(t *testing.T) {
	cases := []struct {
		base    uint32
		percent uint8
		want    uint32
	}{
		{1000, 0, 1000},
		{1000, 10, 900},
		{1000, 33, 670},
		{999, 50, 500},
		{1000, 100, 0},
		{1000, 150, 0},
	}
	for _, tc := range cases {
		if got := ApplyDiscount(tc.base, tc.percent); got != tc.want {
			t.Errorf("ApplyDiscount(%d, %d) = %d, want %d", tc.base, tc.percent, got, tc.want)
		}
	}
}

func expectPurchaseLock(mock sqlmock.Sqlmock, ownerID uint64, status string, seatID uint64) {
	mock.ExpectQuery(`SELECT user_id, status, seat_availability_id FROM reservations WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "status", "seat_availability_id"}).
			AddRow(ownerID, status, seatID))
}

func TestPurchaseHappyPath(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPurchaseRepo(db)

	mock.ExpectBegin()
	expectPurchaseLock(mock, 7, model.ReservationStatusActive, 42)
	mock.ExpectQuery(`SELECT id FROM purchases WHERE reservation_id = \?`).
		WithArgs(uint64(11)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT st.base_price_cents`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"base_price_cents"}).AddRow(1500))
	mock.ExpectExec(`INSERT INTO purchases`).
		WithArgs(uint64(7), uint64(11), nil, uint32(1500)).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec(`INSERT INTO tickets`).
		WithArgs(int64(21), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectExec(`INSERT INTO payments`).
		WithArgs(int64(21), "card", "ref-1", uint32(1500)).
		WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectCommit()

	result, err := repo.Create(context.Background(), 7, false, 11, "", "card", "ref-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.PurchaseID != 21 || result.TotalCents != 1500 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.TicketCode) != 32 {
		t.Fatalf("ticket code %q, want 32 hex chars", result.TicketCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPurchaseWithPromotion(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPurchaseRepo(db)

	mock.ExpectBegin()
	expectPurchaseLock(mock, 7, model.ReservationStatusActive, 42)
	mock.ExpectQuery(`SELECT id FROM purchases WHERE reservation_id = \?`).
		WithArgs(uint64(11)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT st.base_price_cents`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"base_price_cents"}).AddRow(1000))
	mock.ExpectQuery(`SELECT id, discount_percent FROM promotions`).
		WithArgs("HALFOFF").
		WillReturnRows(sqlmock.NewRows([]string{"id", "discount_percent"}).AddRow(5, 50))
	mock.ExpectExec(`INSERT INTO purchases`).
		WithArgs(uint64(7), uint64(11), sqlmock.AnyArg(), uint32(500)).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec(`INSERT INTO tickets`).
		WithArgs(int64(21), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectExec(`INSERT INTO payments`).
		WithArgs(int64(21), "card", "", uint32(500)).
		WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectCommit()

	result, err := repo.Create(context.Background(), 7, false, 11, "HALFOFF", "card", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.TotalCents != 500 {
		t.Fatalf("total = %d, want 500", result.TotalCents)
	}
	if result.PromotionID == nil || *result.PromotionID != 5 {
		t.Fatalf("promotion id = %v, want 5", result.PromotionID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPurchaseExpiredPromotion(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPurchaseRepo(db)

	mock.ExpectBegin()
	expectPurchaseLock(mock, 7, model.ReservationStatusActive, 42)
	mock.ExpectQuery(`SELECT id FROM purchases WHERE reservation_id = \?`).
		WithArgs(uint64(11)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT st.base_price_cents`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"base_price_cents"}).AddRow(1000))
	mock.ExpectQuery(`SELECT id, discount_percent FROM promotions`).
		WithArgs("EXPIRED").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), 7, false, 11, "EXPIRED", "card", "")
	if !errors.Is(err, ErrPromotionNotFound) {
		t.Fatalf("err = %v, want ErrPromotionNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPurchaseTwiceConflicts(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPurchaseRepo(db)

	mock.ExpectBegin()
	expectPurchaseLock(mock, 7, model.ReservationStatusActive, 42)
	mock.ExpectQuery(`SELECT id FROM purchases WHERE reservation_id = \?`).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), 7, false, 11, "", "card", "")
	if !errors.Is(err, ErrAlreadyPurchased) {
		t.Fatalf("err = %v, want ErrAlreadyPurchased", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPurchaseCancelledReservation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPurchaseRepo(db)

	mock.ExpectBegin()
	expectPurchaseLock(mock, 7, model.ReservationStatusCancelled, 42)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), 7, false, 11, "", "card", "")
	if !errors.Is(err, ErrReservationNotActive) {
		t.Fatalf("err = %v, want ErrReservationNotActive", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPurchaseSomeoneElsesReservation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPurchaseRepo(db)

	mock.ExpectBegin()
	expectPurchaseLock(mock, 7, model.ReservationStatusActive, 42)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), 8, false, 11, "", "card", "")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
