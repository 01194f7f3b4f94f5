package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/library-seat-reservation/internal/model"
    "github.com/iliyamo/library-seat-reservation/internal/service"
)

// ReservationHandler exposes the reservation lifecycle to readers:
// admission, check-in, finish, cancel, adjust, delete and listing.
// Ownership is enforced in the service layer; administrators bypass it.
type ReservationHandler struct {
    Admission *service.AdmissionController
    Lifecycle *service.LifecycleService
    Store     service.ReservationStore
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(admission *service.AdmissionController, lifecycle *service.LifecycleService, store service.ReservationStore) *ReservationHandler {
    if admission == nil || lifecycle == nil || store == nil {
        panic("nil dependency passed to NewReservationHandler")
    }
    return &ReservationHandler{Admission: admission, Lifecycle: lifecycle, Store: store}
}

// actor returns the caller's user ID for ownership checks.  For
// administrators it returns 0, which the lifecycle service treats as
// "skip the ownership check".
func actor(c echo.Context) (uint64, error) {
    userID, err := getUserID(c)
    if err != nil {
        return 0, err
    }
    if role, _ := c.Get("role").(string); role == model.RoleAdmin {
        return 0, nil
    }
    return userID, nil
}

func reservationJSON(r *model.Reservation) echo.Map {
    return echo.Map{
        "id":         r.ID,
        "seat_id":    r.SeatID,
        "user_id":    r.UserID,
        "type":       r.Type,
        "status":     r.Status,
        "start_time": r.StartTime,
        "end_time":   r.EndTime,
        "created_at": r.CreatedAt,
        "updated_at": r.UpdatedAt,
    }
}

// Create handles POST /v1/reservations.  Walk-in requests start
// immediately; advance requests carry a start_time inside tomorrow and
// are only accepted after the evening opening hour.  A lost race
// returns 409 with a retryable flag.
func (h *ReservationHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    var body struct {
        SeatID    uint64 `json:"seat_id"`
        Type      string `json:"type"`
        StartTime string `json:"start_time"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.SeatID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id is required"})
    }

    var resType string
    switch body.Type {
    case "walk_in", model.TypeWalkIn:
        resType = model.TypeWalkIn
    case "advance", model.TypeAdvance:
        resType = model.TypeAdvance
    default:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be walk_in or advance"})
    }

    var requestedStart *time.Time
    if body.StartTime != "" {
        t, err := time.Parse(time.RFC3339, body.StartTime)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be RFC 3339"})
        }
        requestedStart = &t
    }

    res, err := h.Admission.CreateReservation(c.Request().Context(), body.SeatID, userID, resType, requestedStart)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusCreated, reservationJSON(res))
}

// CheckIn handles POST /v1/reservations/:id/checkin.
func (h *ReservationHandler) CheckIn(c echo.Context) error {
    return h.transition(c, h.Lifecycle.CheckIn)
}

// Finish handles POST /v1/reservations/:id/finish.  Finishing before
// the start time cancels instead of completing.
func (h *ReservationHandler) Finish(c echo.Context) error {
    return h.transition(c, h.Lifecycle.Finish)
}

// Cancel handles PATCH /v1/reservations/:id/cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    return h.transition(c, h.Lifecycle.Cancel)
}

func (h *ReservationHandler) transition(c echo.Context, op func(ctx context.Context, reservationID, userID uint64) (*model.Reservation, error)) error {
    userID, err := actor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    res, err := op(c.Request().Context(), id, userID)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, reservationJSON(res))
}

// Adjust handles PATCH /v1/reservations/:id.  Both bounds are required
// and the new window is conflict-checked against other live
// reservations on the same seat.
func (h *ReservationHandler) Adjust(c echo.Context) error {
    userID, err := actor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }

    var body struct {
        StartTime string `json:"start_time"`
        EndTime   string `json:"end_time"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    start, err := time.Parse(time.RFC3339, body.StartTime)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be RFC 3339"})
    }
    end, err := time.Parse(time.RFC3339, body.EndTime)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be RFC 3339"})
    }
    if !start.Before(end) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must precede end_time"})
    }

    res, err := h.Lifecycle.Adjust(c.Request().Context(), id, userID, start, end)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, reservationJSON(res))
}

// Delete handles DELETE /v1/reservations/:id.  Reservations that are
// currently active cannot be deleted.
func (h *ReservationHandler) Delete(c echo.Context) error {
    userID, err := actor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    if err := h.Lifecycle.Delete(c.Request().Context(), id, userID); err != nil {
        return domainError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// ListMine handles GET /v1/my-reservations and returns the caller's
// reservations, newest first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    list, err := h.Store.ListForUser(c.Request().Context(), userID)
    if err != nil {
        return domainError(c, err)
    }
    out := make([]echo.Map, 0, len(list))
    for i := range list {
        out = append(out, reservationJSON(&list[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}
