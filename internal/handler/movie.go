package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// MovieHandler serves the movie catalog. Reads are public; writes sit behind
// the admin middleware.
type MovieHandler struct {
	movies *repository.MovieRepo
}

func NewMovieHandler(movies *repository.MovieRepo) *MovieHandler {
	return &MovieHandler{movies: movies}
}

type movieRequest struct {
	Title       string  `json:"title"`
	Genre       string  `json:"genre"`
	DurationMin uint32  `json:"duration_min"`
	Rating      string  `json:"rating"`
	PosterURL   *string `json:"poster_url"`
}

func (r *movieRequest) validate() string {
	if strings.TrimSpace(r.Title) == "" {
		return "title required"
	}
	if r.DurationMin == 0 {
		return "duration_min must be positive"
	}
	return ""
}

func movieJSON(m *model.Movie) echo.Map {
	return echo.Map{
		"id":           m.ID,
		"title":        m.Title,
		"genre":        m.Genre,
		"duration_min": m.DurationMin,
		"rating":       m.Rating,
		"poster_url":   m.PosterURL,
		"created_at":   m.CreatedAt,
		"updated_at":   m.UpdatedAt,
	}
}

// Create adds a movie to the catalog.
func (h *MovieHandler) Create(c echo.Context) error {
	var req movieRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	m := model.Movie{
		Title:       strings.TrimSpace(req.Title),
		Genre:       strings.TrimSpace(req.Genre),
		DurationMin: req.DurationMin,
		Rating:      strings.TrimSpace(req.Rating),
		PosterURL:   req.PosterURL,
	}
	if err := h.movies.Create(c.Request().Context(), &m); err != nil {
		c.Logger().Errorf("create movie: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, movieJSON(&m))
}

// List returns the full catalog.
func (h *MovieHandler) List(c echo.Context) error {
	movies, err := h.movies.List(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list movies: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	out := make([]echo.Map, 0, len(movies))
	for i := range movies {
		out = append(out, movieJSON(&movies[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"movies": out})
}

// Get returns one movie.
func (h *MovieHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	m, err := h.movies.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrMovieNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	if err != nil {
		c.Logger().Errorf("get movie %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, movieJSON(m))
}

// Update rewrites a movie's fields.
func (h *MovieHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var req movieRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	m := model.Movie{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		Genre:       strings.TrimSpace(req.Genre),
		DurationMin: req.DurationMin,
		Rating:      strings.TrimSpace(req.Rating),
		PosterURL:   req.PosterURL,
	}
	err := h.movies.Update(c.Request().Context(), &m)
	if errors.Is(err, repository.ErrMovieNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	if err != nil {
		c.Logger().Errorf("update movie %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "message": "updated"})
}

// Delete removes a movie without showtimes. Screenings on the books answer
// 409.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	err := h.movies.Delete(c.Request().Context(), id)
	switch {
	case errors.Is(err, repository.ErrMovieNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "movie has scheduled showtimes"})
	case err != nil:
		c.Logger().Errorf("delete movie %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "message": "deleted"})
}
