package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// ShowtimeHandler manages screenings. Create and Delete span repositories
// (showtimes plus seat_availability), so those two run handler-held
// transactions over the shared DB handle; everything inside commits or rolls
// back together.
type ShowtimeHandler struct {
	showtimes    *repository.ShowtimeRepo
	movies       *repository.MovieRepo
	rooms        *repository.RoomRepo
	seats        *repository.SeatRepo
	availability *repository.AvailabilityRepo
}

func NewShowtimeHandler(
	showtimes *repository.ShowtimeRepo,
	movies *repository.MovieRepo,
	rooms *repository.RoomRepo,
	seats *repository.SeatRepo,
	availability *repository.AvailabilityRepo,
) *ShowtimeHandler {
	return &ShowtimeHandler{
		showtimes:    showtimes,
		movies:       movies,
		rooms:        rooms,
		seats:        seats,
		availability: availability,
	}
}

type createShowtimeRequest struct {
	MovieID        uint64    `json:"movie_id"`
	RoomID         uint64    `json:"room_id"`
	StartsAt       time.Time `json:"starts_at"`
	BasePriceCents uint32    `json:"base_price_cents"`
}

// Create schedules a showtime and provisions one AVAILABLE seat_availability
// row per active seat of the room, all in one transaction. A failure at any
// step leaves neither the showtime nor orphan availability rows behind.
func (h *ShowtimeHandler) Create(c echo.Context) error {
	var req createShowtimeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MovieID == 0 || req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id and room_id required"})
	}
	if req.BasePriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "base_price_cents must be positive"})
	}
	if !req.StartsAt.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be in the future"})
	}

	ctx := c.Request().Context()
	if _, err := h.movies.GetByID(ctx, req.MovieID); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		c.Logger().Errorf("create showtime: load movie %d: %v", req.MovieID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if _, err := h.rooms.GetByID(ctx, req.RoomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		c.Logger().Errorf("create showtime: load room %d: %v", req.RoomID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	tx, err := h.showtimes.DB().BeginTx(ctx, nil)
	if err != nil {
		c.Logger().Errorf("create showtime: begin tx: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	s := model.Showtime{
		MovieID:        req.MovieID,
		RoomID:         req.RoomID,
		StartsAt:       req.StartsAt,
		BasePriceCents: req.BasePriceCents,
	}
	if err := h.showtimes.CreateTx(ctx, tx, &s); err != nil {
		c.Logger().Errorf("create showtime: insert: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	seatIDs, err := h.seats.ActiveIDsByRoomTx(ctx, tx, req.RoomID)
	if err != nil {
		c.Logger().Errorf("create showtime: load seats of room %d: %v", req.RoomID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if len(seatIDs) == 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room has no active seats"})
	}
	if err := h.availability.ProvisionForShowtimeTx(ctx, tx, s.ID, seatIDs); err != nil {
		c.Logger().Errorf("create showtime: provision seats: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	if err := tx.Commit(); err != nil {
		c.Logger().Errorf("create showtime: commit: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{
		"id":                s.ID,
		"movie_id":          s.MovieID,
		"room_id":           s.RoomID,
		"starts_at":         s.StartsAt,
		"base_price_cents":  s.BasePriceCents,
		"status":            s.Status,
		"seats_provisioned": len(seatIDs),
	})
}

// List returns upcoming showtimes with live available-seat counts. Public.
func (h *ShowtimeHandler) List(c echo.Context) error {
	listings, err := h.showtimes.ListUpcoming(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list showtimes: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"showtimes": listings})
}

// Seats returns the seat grid of a showtime with per-seat status. Public,
// and intentionally a snapshot: reserving re-checks under lock.
func (h *ShowtimeHandler) Seats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	ctx := c.Request().Context()
	if _, err := h.showtimes.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		c.Logger().Errorf("showtime seats: load %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	grid, err := h.availability.ListByShowtime(ctx, id)
	if err != nil {
		c.Logger().Errorf("showtime seats: list %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"showtime_id": id, "seats": grid})
}

// Delete removes a showtime and its availability rows. Refused with 409
// while ACTIVE reservations exist; the count and the deletes share one
// transaction so a reservation cannot sneak in between the check and the
// removal.
func (h *ShowtimeHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	ctx := c.Request().Context()

	tx, err := h.showtimes.DB().BeginTx(ctx, nil)
	if err != nil {
		c.Logger().Errorf("delete showtime: begin tx: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	active, err := h.availability.CountActiveReservationsTx(ctx, tx, id)
	if err != nil {
		c.Logger().Errorf("delete showtime %d: count reservations: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if active > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "showtime has active reservations"})
	}

	if err := h.availability.DeleteByShowtimeTx(ctx, tx, id); err != nil {
		c.Logger().Errorf("delete showtime %d: remove availability: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	err = h.showtimes.DeleteTx(ctx, tx, id)
	if errors.Is(err, repository.ErrShowtimeNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
	}
	if err != nil {
		c.Logger().Errorf("delete showtime %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	if err := tx.Commit(); err != nil {
		c.Logger().Errorf("delete showtime %d: commit: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"id": id, "message": "deleted"})
}
