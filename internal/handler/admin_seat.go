package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/library-seat-reservation/internal/model"
)

func seatJSON(s *model.Seat) echo.Map {
    return echo.Map{
        "id":          s.ID,
        "zone_id":     s.ZoneID,
        "seat_number": s.Number,
        "available":   s.Available,
        "created_at":  s.CreatedAt,
        "updated_at":  s.UpdatedAt,
    }
}

// CreateSeat handles POST /v1/admin/zones/:id/seats.  The seat is
// created inside the path zone; the zone binding never changes after
// that.
func (h *AdminHandler) CreateSeat(c echo.Context) error {
    zoneID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid zone id"})
    }
    if _, err := h.Zones.GetByID(c.Request().Context(), zoneID); err != nil {
        return domainError(c, err)
    }

    var body struct {
        SeatNumber string `json:"seat_number"`
        Available  *bool  `json:"available"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    number := strings.TrimSpace(body.SeatNumber)
    if number == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_number is required"})
    }
    available := true
    if body.Available != nil {
        available = *body.Available
    }

    s := &model.Seat{ZoneID: zoneID, Number: number, Available: available}
    if err := h.Seats.Create(c.Request().Context(), s); err != nil {
        return domainError(c, err)
    }
    h.invalidate(zoneID)
    return c.JSON(http.StatusCreated, seatJSON(s))
}

// ListSeats handles GET /v1/admin/zones/:id/seats.
func (h *AdminHandler) ListSeats(c echo.Context) error {
    zoneID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid zone id"})
    }
    if _, err := h.Zones.GetByID(c.Request().Context(), zoneID); err != nil {
        return domainError(c, err)
    }
    seats, err := h.Seats.ListByZone(c.Request().Context(), zoneID)
    if err != nil {
        return domainError(c, err)
    }
    out := make([]echo.Map, 0, len(seats))
    for i := range seats {
        out = append(out, seatJSON(&seats[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"seats": out})
}

// UpdateSeat handles PATCH /v1/admin/seats/:id.
func (h *AdminHandler) UpdateSeat(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
    }
    s, err := h.Seats.GetByID(c.Request().Context(), id)
    if err != nil {
        return domainError(c, err)
    }

    var body struct {
        SeatNumber *string `json:"seat_number"`
        Available  *bool   `json:"available"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.SeatNumber != nil {
        if trimmed := strings.TrimSpace(*body.SeatNumber); trimmed != "" {
            s.Number = trimmed
        }
    }
    if body.Available != nil {
        s.Available = *body.Available
    }

    if err := h.Seats.Update(c.Request().Context(), id, s.Number, s.Available); err != nil {
        return domainError(c, err)
    }
    h.invalidate(s.ZoneID)
    return c.JSON(http.StatusOK, seatJSON(s))
}

// SetSeatAvailability handles PATCH /v1/admin/seats/:id/availability.
// Disabling a seat makes it display as locked immediately and blocks
// all new admissions regardless of its reservation calendar.
func (h *AdminHandler) SetSeatAvailability(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
    }

    var body struct {
        Available *bool `json:"available"`
    }
    if err := c.Bind(&body); err != nil || body.Available == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "available is required"})
    }

    if err := h.Seats.SetAvailability(c.Request().Context(), id, *body.Available); err != nil {
        return domainError(c, err)
    }
    s, err := h.Seats.GetByID(c.Request().Context(), id)
    if err != nil {
        return domainError(c, err)
    }
    h.invalidate(s.ZoneID)
    return c.JSON(http.StatusOK, seatJSON(s))
}

// DeleteSeat handles DELETE /v1/admin/seats/:id.  Seats with any
// reservation history must be soft-disabled instead.
func (h *AdminHandler) DeleteSeat(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
    }
    s, err := h.Seats.GetByID(c.Request().Context(), id)
    if err != nil {
        return domainError(c, err)
    }
    if err := h.Seats.Delete(c.Request().Context(), id); err != nil {
        return domainError(c, err)
    }
    h.invalidate(s.ZoneID)
    return c.NoContent(http.StatusNoContent)
}
