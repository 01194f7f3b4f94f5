package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/library-seat-reservation/internal/service"
)

// SeatHandler serves the reader-facing seat availability views.  Both
// endpoints go through the status resolver so that display states and
// admission decisions always agree.
type SeatHandler struct {
    Resolver *service.StatusResolver
}

// NewSeatHandler constructs a SeatHandler.
func NewSeatHandler(resolver *service.StatusResolver) *SeatHandler {
    if resolver == nil {
        panic("nil resolver passed to NewSeatHandler")
    }
    return &SeatHandler{Resolver: resolver}
}

// ListStatuses handles GET /v1/seats.  An optional zone_id query
// parameter restricts the list to one zone; otherwise every seat in
// the library is returned.  Responses come from the short-TTL status
// cache when fresh.
func (h *SeatHandler) ListStatuses(c echo.Context) error {
    var zoneID *uint64
    if raw := c.QueryParam("zone_id"); raw != "" {
        id, err := strconv.ParseUint(raw, 10, 64)
        if err != nil || id == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid zone_id"})
        }
        zoneID = &id
    }

    statuses, err := h.Resolver.ListStatuses(c.Request().Context(), zoneID)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"seats": statuses})
}

// GetAvailability handles GET /v1/seats/:id/availability.  It bypasses
// the cache: this is the view a reader confirms immediately before
// reserving, so it must reflect the latest committed state.
func (h *SeatHandler) GetAvailability(c echo.Context) error {
    seatID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
    }

    st, err := h.Resolver.ResolveSeat(c.Request().Context(), seatID)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, st)
}
