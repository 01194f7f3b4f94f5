package handler // handler defines http handlers

import (
    "errors"   // errors provides sentinel comparisons for domain error mapping
    "net/http" // HTTP status codes
    "strconv"  // strconv converts strings to numeric types

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/library-seat-reservation/internal/repository"
    "github.com/iliyamo/library-seat-reservation/internal/service"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// The JWT middleware stores the raw claim value, which arrives as float64
// after JSON decoding.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric :id path parameter.  Zero is rejected along
// with anything non-numeric.
func pathID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// domainError translates service sentinel errors into HTTP responses.
// Domain-state rejections are expected outcomes and get 4xx codes with
// stable error identifiers; anything unrecognized is a 500.
func domainError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, service.ErrSeatNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
    case errors.Is(err, service.ErrReservationNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
    case errors.Is(err, repository.ErrZoneNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "zone not found"})
    case errors.Is(err, service.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, service.ErrSlotConflict):
        // The race loser. The client may retry once against refreshed
        // seat status.
        return c.JSON(http.StatusConflict, echo.Map{
            "error":     "slot_conflict",
            "message":   service.SlotConflictMessage,
            "retryable": true,
        })
    case errors.Is(err, service.ErrSeatOccupied):
        return c.JSON(http.StatusConflict, echo.Map{"error": "seat occupied"})
    case errors.Is(err, service.ErrSeatLocked):
        return c.JSON(http.StatusConflict, echo.Map{"error": "seat locked"})
    case errors.Is(err, service.ErrSeatUnavailable):
        return c.JSON(http.StatusConflict, echo.Map{"error": "seat unavailable"})
    case errors.Is(err, service.ErrZoneInactive):
        return c.JSON(http.StatusConflict, echo.Map{"error": "zone inactive"})
    case errors.Is(err, service.ErrQuotaExceeded):
        return c.JSON(http.StatusConflict, echo.Map{"error": "active reservation quota exceeded"})
    case errors.Is(err, service.ErrInvalidTransition):
        return c.JSON(http.StatusConflict, echo.Map{"error": "invalid state for this operation"})
    case errors.Is(err, service.ErrAdvanceWindowClosed):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "advance booking window not open yet"})
    case errors.Is(err, service.ErrInvalidAdvanceWindow):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "start time must fall within tomorrow"})
    case errors.Is(err, service.ErrInvalidInterval):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "start time must be before end time"})
    case errors.Is(err, service.ErrTooEarly):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "too early to check in"})
    case errors.Is(err, service.ErrCheckinExpired):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "check-in window expired, reservation cancelled"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "resource still referenced"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
