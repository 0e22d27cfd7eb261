package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/queue"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
	queue_publisher "github.com/iliyamo/cinema-ticketing/internal/service"
)

// ReservationHandler fronts the reserve/cancel protocol. It does request
// validation and error-to-status mapping only; every decision about seat
// state happens inside ReservationRepo under the row lock. In particular the
// handler never pre-checks availability, because any answer it got outside
// the transaction would be stale by the time the insert ran.
type ReservationHandler struct {
	reservations *repository.ReservationRepo
}

func NewReservationHandler(reservations *repository.ReservationRepo) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

type createReservationRequest struct {
	UserID             uint64 `json:"user_id"`
	SeatAvailabilityID uint64 `json:"seat_availability_id"`
}

// Create reserves one seat for one showtime.
//
// Status mapping:
//
//	400 malformed body or missing ids
//	403 user_id in the body is not the caller (and the caller is not admin)
//	404 the seat_availability row does not exist
//	409 the seat is not AVAILABLE (a concurrent caller won the race)
//	201 reserved
func (h *ReservationHandler) Create(c echo.Context) error {
	callerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req createReservationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.SeatAvailabilityID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_availability_id required"})
	}
	// Absent user_id defaults to the caller. Admins may reserve on behalf of
	// another user; everyone else gets 403 for a mismatch.
	if req.UserID == 0 {
		req.UserID = callerID
	}
	if req.UserID != callerID && !isAdminCtx(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot reserve for another user"})
	}

	id, err := h.reservations.Reserve(c.Request().Context(), req.UserID, req.SeatAvailabilityID)
	switch {
	case errors.Is(err, repository.ErrSeatNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
	case errors.Is(err, repository.ErrSeatUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat is not available"})
	case err != nil:
		c.Logger().Errorf("reserve seat %d: %v", req.SeatAvailabilityID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	h.publish(c, queue.ActionCreated, id, req.UserID, req.SeatAvailabilityID)

	return c.JSON(http.StatusCreated, echo.Map{
		"id":                   id,
		"user_id":              req.UserID,
		"seat_availability_id": req.SeatAvailabilityID,
		"status":               "ACTIVE",
	})
}

// Cancel soft-cancels a reservation and frees its seat. Owners cancel their
// own; admins cancel anyone's. A reservation that is no longer ACTIVE
// answers 400: the caller named a specific row in the wrong state, which is
// a request problem rather than a race.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	callerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	seatID, err := h.reservations.Cancel(c.Request().Context(), callerID, isAdminCtx(c), id)
	switch {
	case errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your reservation"})
	case errors.Is(err, repository.ErrReservationNotActive):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation is not active"})
	case err != nil:
		c.Logger().Errorf("cancel reservation %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	h.publish(c, queue.ActionCancelled, id, callerID, seatID)

	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": "CANCELLED"})
}

// ListMine returns the caller's reservation history.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	callerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.reservations.ListByUser(c.Request().Context(), callerID)
	if err != nil {
		c.Logger().Errorf("list reservations for user %d: %v", callerID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": details})
}

// ListByUser returns one user's reservation history. Users may only read
// their own; admins may read anyone's.
func (h *ReservationHandler) ListByUser(c echo.Context) error {
	callerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	target, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if target != callerID && !isAdminCtx(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	details, err := h.reservations.ListByUser(c.Request().Context(), target)
	if err != nil {
		c.Logger().Errorf("list reservations for user %d: %v", target, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": details})
}

// ListByShowtime returns every reservation of a showtime. Admin only,
// enforced at the route.
func (h *ReservationHandler) ListByShowtime(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	details, err := h.reservations.ListByShowtime(c.Request().Context(), id)
	if err != nil {
		c.Logger().Errorf("list reservations for showtime %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": details})
}

// publish emits a reservation event after the commit. The broker is best
// effort here; the reservation already happened, so failures only log.
func (h *ReservationHandler) publish(c echo.Context, action string, reservationID, userID, seatAvailabilityID uint64) {
	_ = queue_publisher.PublishReservationEvent(c.Request().Context(), queue.ReservationEvent{
		Action:             action,
		ReservationID:      reservationID,
		UserID:             userID,
		SeatAvailabilityID: seatAvailabilityID,
		OccurredAt:         time.Now().UTC().Format(time.RFC3339),
	})
}
