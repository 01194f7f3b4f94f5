package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/library-seat-reservation/internal/model"
    "github.com/iliyamo/library-seat-reservation/internal/repository"
    "github.com/iliyamo/library-seat-reservation/internal/service"
)

// AdminHandler bundles the repositories administrators use to manage
// the library layout: zones and the seats inside them.  All routes are
// behind RequireRole(ADMIN).  Layout changes invalidate the status
// cache synchronously so a disabled seat reads as locked on the very
// next request.
type AdminHandler struct {
    Zones *repository.ZoneRepo
    Seats *repository.SeatRepo
    Cache *service.StatusCache
}

// NewAdminHandler constructs an AdminHandler.  cache may be nil.
func NewAdminHandler(zones *repository.ZoneRepo, seats *repository.SeatRepo, cache *service.StatusCache) *AdminHandler {
    if zones == nil || seats == nil {
        panic("nil repository passed to NewAdminHandler")
    }
    return &AdminHandler{Zones: zones, Seats: seats, Cache: cache}
}

func (h *AdminHandler) invalidate(zoneID uint64) {
    if h.Cache != nil {
        h.Cache.InvalidateZone(zoneID)
    }
}

func zoneJSON(z *model.Zone) echo.Map {
    return echo.Map{
        "id":         z.ID,
        "name":       z.Name,
        "floor":      z.Floor,
        "active":     z.Active,
        "created_at": z.CreatedAt,
        "updated_at": z.UpdatedAt,
    }
}

// CreateZone handles POST /v1/admin/zones.
func (h *AdminHandler) CreateZone(c echo.Context) error {
    var body struct {
        Name   string `json:"name"`
        Floor  int32  `json:"floor"`
        Active *bool  `json:"active"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    name := strings.TrimSpace(body.Name)
    if name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
    }
    active := true
    if body.Active != nil {
        active = *body.Active
    }

    z := &model.Zone{Name: name, Floor: body.Floor, Active: active}
    if err := h.Zones.Create(c.Request().Context(), z); err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusCreated, zoneJSON(z))
}

// ListZones handles GET /v1/admin/zones.
func (h *AdminHandler) ListZones(c echo.Context) error {
    zones, err := h.Zones.List(c.Request().Context())
    if err != nil {
        return domainError(c, err)
    }
    out := make([]echo.Map, 0, len(zones))
    for i := range zones {
        out = append(out, zoneJSON(&zones[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"zones": out})
}

// UpdateZone handles PATCH /v1/admin/zones/:id.  Deactivating a zone
// blocks new admissions for its seats; existing reservations run their
// course.
func (h *AdminHandler) UpdateZone(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid zone id"})
    }
    z, err := h.Zones.GetByID(c.Request().Context(), id)
    if err != nil {
        return domainError(c, err)
    }

    var body struct {
        Name   *string `json:"name"`
        Floor  *int32  `json:"floor"`
        Active *bool   `json:"active"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Name != nil {
        if trimmed := strings.TrimSpace(*body.Name); trimmed != "" {
            z.Name = trimmed
        }
    }
    if body.Floor != nil {
        z.Floor = *body.Floor
    }
    if body.Active != nil {
        z.Active = *body.Active
    }

    if err := h.Zones.Update(c.Request().Context(), id, z.Name, z.Floor, z.Active); err != nil {
        return domainError(c, err)
    }
    h.invalidate(id)
    return c.JSON(http.StatusOK, zoneJSON(z))
}

// DeleteZone handles DELETE /v1/admin/zones/:id.  Zones that still own
// seats cannot be removed.
func (h *AdminHandler) DeleteZone(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid zone id"})
    }
    if err := h.Zones.Delete(c.Request().Context(), id); err != nil {
        return domainError(c, err)
    }
    h.invalidate(id)
    return c.NoContent(http.StatusNoContent)
}
