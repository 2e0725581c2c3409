// Package http exposes the booking service to the web form over a JSON API.
// The wire shape keeps the form's field names; times cross as HH:MM strings
// and are parsed once on the way in.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roomly/backend/internal/availability"
	"roomly/backend/internal/domain"
	"roomly/backend/internal/identity"
	"roomly/backend/internal/service/bookings"
	"roomly/backend/internal/store"
)

type bookingsService interface {
	Availability(ctx context.Context, room, date string, editBookingID uuid.UUID) (bookings.AvailabilityResult, error)
	Create(ctx context.Context, in bookings.BookingInput) (domain.Booking, error)
	Update(ctx context.Context, bookingID uuid.UUID, in bookings.BookingInput) (domain.Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID) error
	ListAll(ctx context.Context) ([]domain.Booking, error)
	ListByRequester(ctx context.Context, requester string) ([]domain.Booking, error)
	Rooms(ctx context.Context) ([]domain.Room, error)
	ToggleRoom(ctx context.Context, roomID uuid.UUID) (domain.Room, error)
}

type Handler struct {
	svc bookingsService
	idp identity.Provider
	log *slog.Logger
}

func NewHandler(svc bookingsService, idp identity.Provider, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		svc: svc,
		idp: idp,
		log: log.With(slog.String("component", "http.handler")),
	}
}

type intervalJSON struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type bookingJSON struct {
	ID        string `json:"id"`
	Room      string `json:"room"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Requester string `json:"requester"`
	Unit      string `json:"unit"`
	Agenda    string `json:"agenda"`
}

func toIntervalJSON(ivs []availability.Interval) []intervalJSON {
	out := make([]intervalJSON, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, intervalJSON{StartTime: iv.Start.String(), EndTime: iv.End.String()})
	}
	return out
}

func toBookingJSON(b domain.Booking) bookingJSON {
	return bookingJSON{
		ID:        b.ID.String(),
		Room:      b.Room,
		Date:      b.Date,
		StartTime: b.StartMinutes.String(),
		EndTime:   b.EndMinutes.String(),
		Requester: b.Requester,
		Unit:      b.Unit,
		Agenda:    b.Agenda,
	}
}

func toBookingListJSON(bs []domain.Booking) []bookingJSON {
	out := make([]bookingJSON, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingJSON(b))
	}
	return out
}

type checkAvailabilityRequest struct {
	Room      string `json:"room"`
	Date      string `json:"date"`
	EditingID string `json:"editingId"`
	Start     string `json:"start"`
}

// CheckAvailability returns the free intervals for a room and date, the
// existing bookings for the detail view, and the selectable start options.
// With "start" set, the matching end options are included too; with
// "editingId" set, that booking's own slot counts as free.
func (h *Handler) CheckAvailability(c *gin.Context) {
	var req checkAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	editID := uuid.Nil
	if req.EditingID != "" {
		id, err := uuid.Parse(req.EditingID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid editingId"})
			return
		}
		editID = id
	}

	res, err := h.svc.Availability(c.Request.Context(), req.Room, req.Date, editID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	starts := availability.StartOptions(res.Free)
	startOptions := make([]string, 0, len(starts))
	for _, s := range starts {
		startOptions = append(startOptions, s.String())
	}

	body := gin.H{
		"room":         res.Room,
		"date":         res.Date,
		"available":    toIntervalJSON(res.Free),
		"bookings":     toBookingListJSON(res.Bookings),
		"startOptions": startOptions,
	}

	if req.Start != "" {
		start, err := domain.ParseTimeOfDay(req.Start)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid start"})
			return
		}
		ends := availability.EndOptions(res.Free, start)
		endOptions := make([]string, 0, len(ends))
		for _, e := range ends {
			endOptions = append(endOptions, e.String())
		}
		body["endOptions"] = endOptions
	}

	c.JSON(http.StatusOK, body)
}

type bookingRequest struct {
	Room      string `json:"room"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Requester string `json:"requester"`
	Unit      string `json:"unit"`
	Agenda    string `json:"agenda"`
}

func (r bookingRequest) toInput() bookings.BookingInput {
	return bookings.BookingInput{
		Room:      r.Room,
		Date:      r.Date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Requester: r.Requester,
		Unit:      r.Unit,
		Agenda:    r.Agenda,
	}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	created, err := h.svc.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": toBookingJSON(created)})
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid booking id"})
		return
	}

	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), bookingID, req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": toBookingJSON(updated)})
}

type cancelRequest struct {
	ID string `json:"id"`
}

func (h *Handler) CancelBooking(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	bookingID, err := uuid.Parse(req.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid booking id"})
		return
	}

	if err := h.svc.Cancel(c.Request.Context(), bookingID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ListBookings(c *gin.Context) {
	all, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingListJSON(all))
}

func (h *Handler) MyBookings(c *gin.Context) {
	user, ok := h.idp.FromRequest(c.Request)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "not authenticated"})
		return
	}

	mine, err := h.svc.ListByRequester(c.Request.Context(), user.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingListJSON(mine))
}

type roomJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity string `json:"capacity"`
	ImageURL string `json:"imageUrl"`
	IsActive bool   `json:"isActive"`
}

func toRoomJSON(r domain.Room) roomJSON {
	return roomJSON{
		ID:       r.ID.String(),
		Name:     r.Name,
		Capacity: r.Capacity,
		ImageURL: r.ImageURL,
		IsActive: r.IsActive,
	}
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.svc.Rooms(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]roomJSON, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoomJSON(r))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ToggleRoom(c *gin.Context) {
	user, ok := h.idp.FromRequest(c.Request)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "not authenticated"})
		return
	}
	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "admin only"})
		return
	}

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid room id"})
		return
	}

	room, err := h.svc.ToggleRoom(c.Request.Context(), roomID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "room": toRoomJSON(room)})
}

// writeError maps the service and store error taxonomy onto HTTP statuses.
// Validation and conflict messages go back verbatim; anything unexpected is a
// generic 500 with the detail kept in the log.
func (h *Handler) writeError(c *gin.Context, err error) {
	var vErr *bookings.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": vErr.Error()})
	case errors.Is(err, bookings.ErrRoomUnavailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "room unavailable"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "slot unavailable, please re-check availability"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "booking not found"})
	default:
		h.log.Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Any("err", err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
	}
}
