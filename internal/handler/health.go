package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports process liveness plus a database ping so load balancers can
// tell a wedged pool from a healthy one.
func Health(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		dbStatus := "ok"
		if err := db.PingContext(c.Request().Context()); err != nil {
			dbStatus = "down"
		}
		status := http.StatusOK
		if dbStatus != "ok" {
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, echo.Map{
			"status":   "ok",
			"database": dbStatus,
		})
	}
}
