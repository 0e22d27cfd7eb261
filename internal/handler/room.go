package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// RoomHandler manages screening rooms and their physical seat layouts.
type RoomHandler struct {
	rooms *repository.RoomRepo
	seats *repository.SeatRepo
}

func NewRoomHandler(rooms *repository.RoomRepo, seats *repository.SeatRepo) *RoomHandler {
	return &RoomHandler{rooms: rooms, seats: seats}
}

type roomRequest struct {
	Name string `json:"name"`
}

// Create adds a room. Seats are laid out separately via CreateSeats.
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	room := model.Room{Name: req.Name}
	if err := h.rooms.Create(c.Request().Context(), &room); err != nil {
		c.Logger().Errorf("create room: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": room.ID, "name": room.Name, "created_at": room.CreatedAt})
}

// List returns all rooms.
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.rooms.List(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list rooms: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}

// Update renames a room.
func (h *RoomHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req roomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	err := h.rooms.UpdateName(c.Request().Context(), id, req.Name)
	if errors.Is(err, repository.ErrRoomNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}
	if err != nil {
		c.Logger().Errorf("update room %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "name": req.Name})
}

// Delete removes an unused room. Seats or showtimes referencing it answer 409.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	err := h.rooms.Delete(c.Request().Context(), id)
	switch {
	case errors.Is(err, repository.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "room is in use"})
	case err != nil:
		c.Logger().Errorf("delete room %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "message": "deleted"})
}

type createSeatsRequest struct {
	Rows        []string `json:"rows"`          // row labels, e.g. ["A","B","C"]
	SeatsPerRow uint32   `json:"seats_per_row"` // numbered 1..N within each row
}

// CreateSeats provisions a grid of seats for a room in one bulk insert. The
// layout is rows x seats_per_row; irregular rooms can deactivate individual
// seats afterwards.
func (h *RoomHandler) CreateSeats(c echo.Context) error {
	roomID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req createSeatsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Rows) == 0 || req.SeatsPerRow == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rows and seats_per_row required"})
	}
	if len(req.Rows)*int(req.SeatsPerRow) > 2000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "layout too large"})
	}

	ctx := c.Request().Context()
	if _, err := h.rooms.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		c.Logger().Errorf("create seats: load room %d: %v", roomID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	seats := make([]model.Seat, 0, len(req.Rows)*int(req.SeatsPerRow))
	for _, row := range req.Rows {
		row = strings.TrimSpace(row)
		if row == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "empty row label"})
		}
		for n := uint32(1); n <= req.SeatsPerRow; n++ {
			seats = append(seats, model.Seat{RoomID: roomID, RowLabel: row, SeatNumber: n, IsActive: true})
		}
	}
	if err := h.seats.CreateBulk(ctx, seats); err != nil {
		c.Logger().Errorf("create seats for room %d: %v", roomID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"room_id": roomID, "seats_created": len(seats)})
}

// ListSeats returns the physical layout of a room.
func (h *RoomHandler) ListSeats(c echo.Context) error {
	roomID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	seats, err := h.seats.GetByRoom(c.Request().Context(), roomID)
	if err != nil {
		c.Logger().Errorf("list seats for room %d: %v", roomID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"room_id": roomID, "seats": seats})
}

type setSeatActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// SetSeatActive toggles whether a seat participates in future showtime
// provisioning.
func (h *RoomHandler) SetSeatActive(c echo.Context) error {
	seatID, ok := pathID(c, "seatId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	var req setSeatActiveRequest
	if err := c.Bind(&req); err != nil || req.IsActive == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "is_active required"})
	}
	err := h.seats.SetActive(c.Request().Context(), seatID, *req.IsActive)
	if errors.Is(err, repository.ErrSeatRowNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
	}
	if err != nil {
		c.Logger().Errorf("set seat %d active: %v", seatID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": seatID, "is_active": *req.IsActive})
}
