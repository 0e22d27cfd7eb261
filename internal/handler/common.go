// Package handler contains the HTTP boundary: request binding, the calls
// into the repositories and the mapping of repository sentinel errors onto
// HTTP status codes. Handlers never touch SQL directly except where a
// multi-repository transaction has to be coordinated (showtime lifecycle).
package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated user id stored by the JWT middleware.
// JSON numbers decode as float64, so both shapes are accepted.
func getUserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	case int64:
		return uint64(v), true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// isAdminCtx reports whether the JWT carried is_admin=true.
func isAdminCtx(c echo.Context) bool {
	flag, _ := c.Get("is_admin").(bool)
	return flag
}

// pathID parses a numeric path parameter. A zero or malformed value returns
// ok=false and the caller answers 400.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}
