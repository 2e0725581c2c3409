package bookings

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"roomly/backend/internal/availability"
	"roomly/backend/internal/domain"
	"roomly/backend/internal/notify"
	"roomly/backend/internal/store"
)

// ErrRoomUnavailable covers both an unknown room and one an admin has
// disabled; the caller cannot tell the difference and should not.
var ErrRoomUnavailable = errors.New("room unavailable")

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type Service struct {
	bookings store.BookingRepository
	rooms    store.RoomRepository
	window   []availability.Interval
	notifier *notify.Dispatcher
	log      *slog.Logger
}

func NewService(bookings store.BookingRepository, rooms store.RoomRepository, window []availability.Interval, notifier *notify.Dispatcher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		bookings: bookings,
		rooms:    rooms,
		window:   window,
		notifier: notifier,
		log:      log.With(slog.String("component", "service.bookings")),
	}
}

// BookingInput carries the raw form fields. Times arrive as HH:MM strings and
// are parsed into TimeOfDay exactly once, here.
type BookingInput struct {
	Room      string
	Date      string
	StartTime string
	EndTime   string
	Requester string
	Unit      string
	Agenda    string
}

type AvailabilityResult struct {
	Room     string
	Date     string
	Free     []availability.Interval
	Bookings []domain.Booking
}

// Availability returns the free intervals for a room and date plus the
// existing bookings for the detail view. When editBookingID is set, that
// booking's own slot is treated as free so its editor can keep or move it.
func (s *Service) Availability(ctx context.Context, room, date string, editBookingID uuid.UUID) (AvailabilityResult, error) {
	room = strings.TrimSpace(room)
	if room == "" {
		return AvailabilityResult{}, validationError("room is required")
	}
	if date == "" {
		return AvailabilityResult{}, validationError("date is required")
	}
	if err := domain.ValidateDate(date); err != nil {
		return AvailabilityResult{}, validationError(err.Error())
	}
	if err := s.ensureRoomBookable(ctx, room); err != nil {
		return AvailabilityResult{}, err
	}

	existing, err := s.bookings.ListByRoomDate(ctx, room, date)
	if err != nil {
		return AvailabilityResult{}, err
	}

	var own *availability.Interval
	booked := make([]availability.Interval, 0, len(existing))
	for _, b := range existing {
		iv := availability.Interval{Start: b.StartMinutes, End: b.EndMinutes}
		if editBookingID != uuid.Nil && b.ID == editBookingID {
			own = &iv
			continue
		}
		booked = append(booked, iv)
	}

	var free []availability.Interval
	if own != nil {
		free = availability.ComputeFreeForEdit(s.window, booked, *own)
	} else {
		free = availability.ComputeFree(s.window, booked)
	}

	return AvailabilityResult{Room: room, Date: date, Free: free, Bookings: existing}, nil
}

func (s *Service) Create(ctx context.Context, in BookingInput) (domain.Booking, error) {
	booking, err := s.validate(in)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := s.ensureRoomBookable(ctx, booking.Room); err != nil {
		return domain.Booking{}, err
	}

	created, err := s.bookings.Create(ctx, booking)
	if err != nil {
		return domain.Booking{}, err
	}

	s.log.Info("booking created",
		slog.String("booking_id", created.ID.String()),
		slog.String("room", created.Room),
		slog.String("date", created.Date),
	)
	if s.notifier != nil {
		s.notifier.BookingCreated(created)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, bookingID uuid.UUID, in BookingInput) (domain.Booking, error) {
	if bookingID == uuid.Nil {
		return domain.Booking{}, validationError("booking id is required")
	}
	booking, err := s.validate(in)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := s.ensureRoomBookable(ctx, booking.Room); err != nil {
		return domain.Booking{}, err
	}

	old, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}

	booking.ID = bookingID
	updated, err := s.bookings.Update(ctx, booking)
	if err != nil {
		return domain.Booking{}, err
	}

	s.log.Info("booking updated",
		slog.String("booking_id", updated.ID.String()),
		slog.String("room", updated.Room),
		slog.String("date", updated.Date),
	)
	if s.notifier != nil {
		s.notifier.BookingUpdated(old, updated)
	}
	return updated, nil
}

func (s *Service) Cancel(ctx context.Context, bookingID uuid.UUID) error {
	if bookingID == uuid.Nil {
		return validationError("booking id is required")
	}

	deleted, err := s.bookings.Delete(ctx, bookingID)
	if err != nil {
		return err
	}

	s.log.Info("booking cancelled",
		slog.String("booking_id", deleted.ID.String()),
		slog.String("room", deleted.Room),
		slog.String("date", deleted.Date),
	)
	if s.notifier != nil {
		s.notifier.BookingCancelled(deleted)
	}
	return nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.ListAll(ctx)
}

func (s *Service) ListByRequester(ctx context.Context, requester string) ([]domain.Booking, error) {
	requester = strings.TrimSpace(requester)
	if requester == "" {
		return nil, validationError("requester is required")
	}
	return s.bookings.ListByRequester(ctx, requester)
}

func (s *Service) Rooms(ctx context.Context) ([]domain.Room, error) {
	return s.rooms.List(ctx)
}

func (s *Service) ToggleRoom(ctx context.Context, roomID uuid.UUID) (domain.Room, error) {
	if roomID == uuid.Nil {
		return domain.Room{}, validationError("room id is required")
	}
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return domain.Room{}, err
	}
	return s.rooms.SetActive(ctx, roomID, !room.IsActive)
}

func (s *Service) validate(in BookingInput) (domain.Booking, error) {
	room := strings.TrimSpace(in.Room)
	requester := strings.TrimSpace(in.Requester)
	unit := strings.TrimSpace(in.Unit)
	agenda := strings.TrimSpace(in.Agenda)

	switch {
	case room == "":
		return domain.Booking{}, validationError("room is required")
	case in.Date == "":
		return domain.Booking{}, validationError("date is required")
	case in.StartTime == "":
		return domain.Booking{}, validationError("startTime is required")
	case in.EndTime == "":
		return domain.Booking{}, validationError("endTime is required")
	case requester == "":
		return domain.Booking{}, validationError("requester is required")
	case unit == "":
		return domain.Booking{}, validationError("unit is required")
	case agenda == "":
		return domain.Booking{}, validationError("agenda is required")
	}

	if err := domain.ValidateDate(in.Date); err != nil {
		return domain.Booking{}, validationError(err.Error())
	}
	start, err := domain.ParseTimeOfDay(in.StartTime)
	if err != nil {
		return domain.Booking{}, validationError(err.Error())
	}
	end, err := domain.ParseTimeOfDay(in.EndTime)
	if err != nil {
		return domain.Booking{}, validationError(err.Error())
	}
	if start >= end {
		return domain.Booking{}, validationError("endTime must be after startTime")
	}
	if !s.withinWindow(start, end) {
		return domain.Booking{}, validationError("requested time is outside working hours")
	}

	return domain.Booking{
		Room:         room,
		Date:         in.Date,
		StartMinutes: start,
		EndMinutes:   end,
		Requester:    requester,
		Unit:         unit,
		Agenda:       agenda,
	}, nil
}

func (s *Service) withinWindow(start, end domain.TimeOfDay) bool {
	for _, w := range s.window {
		if w.Start <= start && end <= w.End {
			return true
		}
	}
	return false
}

func (s *Service) ensureRoomBookable(ctx context.Context, name string) error {
	room, err := s.rooms.GetByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return ErrRoomUnavailable
	}
	if err != nil {
		return err
	}
	if !room.IsActive {
		return ErrRoomUnavailable
	}
	return nil
}
