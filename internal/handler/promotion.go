package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// PromotionHandler manages discount codes. Reads are public so clients can
// show running offers; writes are admin only.
type PromotionHandler struct {
	promotions *repository.PromotionRepo
}

func NewPromotionHandler(promotions *repository.PromotionRepo) *PromotionHandler {
	return &PromotionHandler{promotions: promotions}
}

type promotionRequest struct {
	Code            string    `json:"code"`
	Description     string    `json:"description"`
	DiscountPercent uint8     `json:"discount_percent"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
}

func (r *promotionRequest) validate() string {
	if strings.TrimSpace(r.Code) == "" {
		return "code required"
	}
	if r.DiscountPercent == 0 || r.DiscountPercent > 100 {
		return "discount_percent must be between 1 and 100"
	}
	if !r.EndsAt.After(r.StartsAt) {
		return "ends_at must be after starts_at"
	}
	return ""
}

// Create adds a promotion.
func (h *PromotionHandler) Create(c echo.Context) error {
	var req promotionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	p := model.Promotion{
		Code:            strings.ToUpper(strings.TrimSpace(req.Code)),
		Description:     strings.TrimSpace(req.Description),
		DiscountPercent: req.DiscountPercent,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
	}
	if err := h.promotions.Create(c.Request().Context(), &p); err != nil {
		c.Logger().Errorf("create promotion: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":               p.ID,
		"code":             p.Code,
		"discount_percent": p.DiscountPercent,
		"starts_at":        p.StartsAt,
		"ends_at":          p.EndsAt,
	})
}

// List returns all promotions.
func (h *PromotionHandler) List(c echo.Context) error {
	promos, err := h.promotions.List(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list promotions: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"promotions": promos})
}

// Update rewrites a promotion.
func (h *PromotionHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid promotion id"})
	}
	var req promotionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	p := model.Promotion{
		ID:              id,
		Code:            strings.ToUpper(strings.TrimSpace(req.Code)),
		Description:     strings.TrimSpace(req.Description),
		DiscountPercent: req.DiscountPercent,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
	}
	err := h.promotions.Update(c.Request().Context(), &p)
	if errors.Is(err, repository.ErrPromotionNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "promotion not found"})
	}
	if err != nil {
		c.Logger().Errorf("update promotion %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "message": "updated"})
}

// Delete removes a promotion. Past purchases keep their discount history.
func (h *PromotionHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid promotion id"})
	}
	err := h.promotions.Delete(c.Request().Context(), id)
	if errors.Is(err, repository.ErrPromotionNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "promotion not found"})
	}
	if err != nil {
		c.Logger().Errorf("delete promotion %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "message": "deleted"})
}
