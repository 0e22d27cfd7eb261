package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// PurchaseHandler turns ACTIVE reservations into purchases with a ticket and
// a payment record.
type PurchaseHandler struct {
	purchases *repository.PurchaseRepo
}

func NewPurchaseHandler(purchases *repository.PurchaseRepo) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

type createPurchaseRequest struct {
	ReservationID    uint64 `json:"reservation_id"`
	PromotionCode    string `json:"promotion_code"`
	PaymentMethod    string `json:"payment_method"`
	PaymentReference string `json:"payment_reference"`
}

// Create purchases a reservation. A second purchase of the same reservation
// and a purchase of a cancelled one both answer 409.
func (h *PurchaseHandler) Create(c echo.Context) error {
	callerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createPurchaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ReservationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id required"})
	}
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if req.PaymentMethod == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_method required"})
	}

	result, err := h.purchases.Create(c.Request().Context(), callerID, isAdminCtx(c),
		req.ReservationID, strings.TrimSpace(req.PromotionCode), req.PaymentMethod, strings.TrimSpace(req.PaymentReference))
	switch {
	case errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your reservation"})
	case errors.Is(err, repository.ErrReservationNotActive):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is not active"})
	case errors.Is(err, repository.ErrAlreadyPurchased):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already purchased"})
	case errors.Is(err, repository.ErrPromotionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "promotion not valid"})
	case err != nil:
		c.Logger().Errorf("purchase reservation %d: %v", req.ReservationID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, result)
}

// ListMine returns the caller's purchase history.
func (h *PurchaseHandler) ListMine(c echo.Context) error {
	callerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.purchases.ListByUser(c.Request().Context(), callerID)
	if err != nil {
		c.Logger().Errorf("list purchases for user %d: %v", callerID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"purchases": details})
}

// ListAll returns every purchase. Admin only, enforced at the route.
func (h *PurchaseHandler) ListAll(c echo.Context) error {
	details, err := h.purchases.ListAll(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list purchases: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"purchases": details})
}

// Get returns one purchase, owner or admin only.
func (h *PurchaseHandler) Get(c echo.Context) error {
	callerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purchase id"})
	}
	d, err := h.purchases.GetByID(c.Request().Context(), callerID, isAdminCtx(c), id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "purchase not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case err != nil:
		c.Logger().Errorf("get purchase %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, d)
}
