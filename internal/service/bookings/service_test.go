package bookings

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"roomly/backend/internal/availability"
	"roomly/backend/internal/domain"
	"roomly/backend/internal/store"
)

type fakeBookingRepo struct {
	createFn          func(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	updateFn          func(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	deleteFn          func(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	getByIDFn         func(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	listByRoomDateFn  func(ctx context.Context, room, date string) ([]domain.Booking, error)
	listByRequesterFn func(ctx context.Context, requester string) ([]domain.Booking, error)
	listAllFn         func(ctx context.Context) ([]domain.Booking, error)
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, booking)
}

func (f *fakeBookingRepo) Update(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	if f.updateFn == nil {
		panic("Update not configured")
	}
	return f.updateFn(ctx, booking)
}

func (f *fakeBookingRepo) Delete(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, bookingID)
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	if f.getByIDFn == nil {
		panic("GetByID not configured")
	}
	return f.getByIDFn(ctx, bookingID)
}

func (f *fakeBookingRepo) ListByRoomDate(ctx context.Context, room, date string) ([]domain.Booking, error) {
	if f.listByRoomDateFn == nil {
		panic("ListByRoomDate not configured")
	}
	return f.listByRoomDateFn(ctx, room, date)
}

func (f *fakeBookingRepo) ListByRequester(ctx context.Context, requester string) ([]domain.Booking, error) {
	if f.listByRequesterFn == nil {
		panic("ListByRequester not configured")
	}
	return f.listByRequesterFn(ctx, requester)
}

func (f *fakeBookingRepo) ListAll(ctx context.Context) ([]domain.Booking, error) {
	if f.listAllFn == nil {
		panic("ListAll not configured")
	}
	return f.listAllFn(ctx)
}

type fakeRoomRepo struct {
	listFn      func(ctx context.Context) ([]domain.Room, error)
	getByNameFn func(ctx context.Context, name string) (domain.Room, error)
	getByIDFn   func(ctx context.Context, roomID uuid.UUID) (domain.Room, error)
	setActiveFn func(ctx context.Context, roomID uuid.UUID, active bool) (domain.Room, error)
}

func (f *fakeRoomRepo) List(ctx context.Context) ([]domain.Room, error) {
	if f.listFn == nil {
		panic("List not configured")
	}
	return f.listFn(ctx)
}

func (f *fakeRoomRepo) GetByName(ctx context.Context, name string) (domain.Room, error) {
	if f.getByNameFn == nil {
		panic("GetByName not configured")
	}
	return f.getByNameFn(ctx, name)
}

func (f *fakeRoomRepo) GetByID(ctx context.Context, roomID uuid.UUID) (domain.Room, error) {
	if f.getByIDFn == nil {
		panic("GetByID not configured")
	}
	return f.getByIDFn(ctx, roomID)
}

func (f *fakeRoomRepo) SetActive(ctx context.Context, roomID uuid.UUID, active bool) (domain.Room, error) {
	if f.setActiveFn == nil {
		panic("SetActive not configured")
	}
	return f.setActiveFn(ctx, roomID, active)
}

func activeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{
		getByNameFn: func(ctx context.Context, name string) (domain.Room, error) {
			return domain.Room{Name: name, IsActive: true}, nil
		},
	}
}

func defaultWindow(t *testing.T) []availability.Interval {
	t.Helper()
	return []availability.Interval{{Start: mustTime(t, "07:30"), End: mustTime(t, "17:00")}}
}

func mustTime(t *testing.T, s string) domain.TimeOfDay {
	t.Helper()
	v, err := domain.ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q) error: %v", s, err)
	}
	return v
}

func validInput() BookingInput {
	return BookingInput{
		Room:      "Command Center",
		Date:      "2024-05-01",
		StartTime: "11:00",
		EndTime:   "12:00",
		Requester: "andi",
		Unit:      "Setditjen-URT",
		Agenda:    "weekly sync",
	}
}

func TestServiceCreate_Validation(t *testing.T) {
	svc := NewService(&fakeBookingRepo{}, activeRoomRepo(), defaultWindow(t), nil, slog.Default())

	tests := []struct {
		name    string
		mutate  func(in *BookingInput)
		wantMsg string
	}{
		{
			name:    "missing room",
			mutate:  func(in *BookingInput) { in.Room = " " },
			wantMsg: "room is required",
		},
		{
			name:    "missing agenda",
			mutate:  func(in *BookingInput) { in.Agenda = "" },
			wantMsg: "agenda is required",
		},
		{
			name:    "bad date",
			mutate:  func(in *BookingInput) { in.Date = "01-05-2024" },
			wantMsg: `invalid date "01-05-2024", want YYYY-MM-DD`,
		},
		{
			name:    "bad start time",
			mutate:  func(in *BookingInput) { in.StartTime = "9:00" },
			wantMsg: `invalid time "9:00", want HH:MM`,
		},
		{
			name:    "start equals end",
			mutate:  func(in *BookingInput) { in.EndTime = in.StartTime },
			wantMsg: "endTime must be after startTime",
		},
		{
			name:    "inverted interval",
			mutate:  func(in *BookingInput) { in.StartTime, in.EndTime = "12:00", "11:00" },
			wantMsg: "endTime must be after startTime",
		},
		{
			name:    "before working hours",
			mutate:  func(in *BookingInput) { in.StartTime = "07:00" },
			wantMsg: "requested time is outside working hours",
		},
		{
			name:    "past working hours",
			mutate:  func(in *BookingInput) { in.StartTime, in.EndTime = "16:30", "17:30" },
			wantMsg: "requested time is outside working hours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), in)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error type = %T (%v), want *ValidationError", err, err)
			}
			if vErr.Error() != tt.wantMsg {
				t.Fatalf("error = %q, want %q", vErr.Error(), tt.wantMsg)
			}
		})
	}
}

func TestServiceCreate_RejectsUnknownAndDisabledRooms(t *testing.T) {
	repo := &fakeBookingRepo{
		createFn: func(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
			t.Fatalf("store reached despite unavailable room")
			return booking, nil
		},
	}

	svc := NewService(repo, &fakeRoomRepo{
		getByNameFn: func(ctx context.Context, name string) (domain.Room, error) {
			return domain.Room{}, store.ErrNotFound
		},
	}, defaultWindow(t), nil, slog.Default())
	if _, err := svc.Create(context.Background(), validInput()); !errors.Is(err, ErrRoomUnavailable) {
		t.Fatalf("unknown room err = %v, want %v", err, ErrRoomUnavailable)
	}

	svc = NewService(repo, &fakeRoomRepo{
		getByNameFn: func(ctx context.Context, name string) (domain.Room, error) {
			return domain.Room{Name: name, IsActive: false}, nil
		},
	}, defaultWindow(t), nil, slog.Default())
	if _, err := svc.Create(context.Background(), validInput()); !errors.Is(err, ErrRoomUnavailable) {
		t.Fatalf("disabled room err = %v, want %v", err, ErrRoomUnavailable)
	}
}

func TestServiceCreate_ParsesTimesAndTrimsFields(t *testing.T) {
	var got domain.Booking
	svc := NewService(&fakeBookingRepo{
		createFn: func(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
			got = booking
			return booking, nil
		},
	}, activeRoomRepo(), defaultWindow(t), nil, slog.Default())

	in := validInput()
	in.Requester = "  andi  "
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.Requester != "andi" {
		t.Fatalf("requester = %q, want %q", got.Requester, "andi")
	}
	if got.StartMinutes != mustTime(t, "11:00") || got.EndMinutes != mustTime(t, "12:00") {
		t.Fatalf("interval = %s-%s, want 11:00-12:00", got.StartMinutes, got.EndMinutes)
	}
}

func TestServiceCreate_PassesConflictThrough(t *testing.T) {
	svc := NewService(&fakeBookingRepo{
		createFn: func(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
			return domain.Booking{}, &store.ConflictError{Existing: domain.Booking{Room: booking.Room}}
		},
	}, activeRoomRepo(), defaultWindow(t), nil, slog.Default())

	_, err := svc.Create(context.Background(), validInput())
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("err = %v, want %v", err, store.ErrConflict)
	}
}

func TestServiceAvailability_SubtractsBookings(t *testing.T) {
	svc := NewService(&fakeBookingRepo{
		listByRoomDateFn: func(ctx context.Context, room, date string) ([]domain.Booking, error) {
			return []domain.Booking{
				{
					ID:           uuid.MustParse("00000000-0000-0000-0000-000000000001"),
					Room:         room,
					Date:         date,
					StartMinutes: mustTime(t, "09:00"),
					EndMinutes:   mustTime(t, "11:00"),
				},
			}, nil
		},
	}, activeRoomRepo(), defaultWindow(t), nil, slog.Default())

	res, err := svc.Availability(context.Background(), "Command Center", "2024-05-01", uuid.Nil)
	if err != nil {
		t.Fatalf("Availability error: %v", err)
	}

	want := []availability.Interval{
		{Start: mustTime(t, "07:30"), End: mustTime(t, "09:00")},
		{Start: mustTime(t, "11:00"), End: mustTime(t, "17:00")},
	}
	if len(res.Free) != len(want) || res.Free[0] != want[0] || res.Free[1] != want[1] {
		t.Fatalf("free = %v, want %v", res.Free, want)
	}
	if len(res.Bookings) != 1 {
		t.Fatalf("len(bookings) = %d, want 1", len(res.Bookings))
	}
}

func TestServiceAvailability_EditModeReinjectsOwnSlot(t *testing.T) {
	editID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	svc := NewService(&fakeBookingRepo{
		listByRoomDateFn: func(ctx context.Context, room, date string) ([]domain.Booking, error) {
			return []domain.Booking{
				{
					ID:           editID,
					Room:         room,
					Date:         date,
					StartMinutes: mustTime(t, "09:00"),
					EndMinutes:   mustTime(t, "10:00"),
				},
			}, nil
		},
	}, activeRoomRepo(), defaultWindow(t), nil, slog.Default())

	res, err := svc.Availability(context.Background(), "Command Center", "2024-05-01", editID)
	if err != nil {
		t.Fatalf("Availability error: %v", err)
	}
	if len(res.Free) != 1 || res.Free[0].Start != mustTime(t, "07:30") || res.Free[0].End != mustTime(t, "17:00") {
		t.Fatalf("free = %v, want the full window", res.Free)
	}

	starts := availability.StartOptions(res.Free)
	if starts[0] != mustTime(t, "07:30") || starts[len(starts)-1] != mustTime(t, "16:30") {
		t.Fatalf("start options span %s..%s, want 07:30..16:30", starts[0], starts[len(starts)-1])
	}
}

func TestServiceAvailability_RejectsDisabledRoom(t *testing.T) {
	svc := NewService(&fakeBookingRepo{}, &fakeRoomRepo{
		getByNameFn: func(ctx context.Context, name string) (domain.Room, error) {
			return domain.Room{Name: name, IsActive: false}, nil
		},
	}, defaultWindow(t), nil, slog.Default())

	_, err := svc.Availability(context.Background(), "Command Center", "2024-05-01", uuid.Nil)
	if !errors.Is(err, ErrRoomUnavailable) {
		t.Fatalf("err = %v, want %v", err, ErrRoomUnavailable)
	}
}

func TestServiceUpdate_LoadsOldBookingAndKeepsID(t *testing.T) {
	bookingID := uuid.MustParse("00000000-0000-0000-0000-000000000007")
	var updated domain.Booking

	svc := NewService(&fakeBookingRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
			if id != bookingID {
				t.Fatalf("GetByID id = %s, want %s", id, bookingID)
			}
			return domain.Booking{ID: bookingID, Room: "Command Center"}, nil
		},
		updateFn: func(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
			updated = booking
			return booking, nil
		},
	}, activeRoomRepo(), defaultWindow(t), nil, slog.Default())

	if _, err := svc.Update(context.Background(), bookingID, validInput()); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.ID != bookingID {
		t.Fatalf("updated id = %s, want %s", updated.ID, bookingID)
	}
}

func TestServiceUpdate_NotFound(t *testing.T) {
	svc := NewService(&fakeBookingRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
			return domain.Booking{}, store.ErrNotFound
		},
	}, activeRoomRepo(), defaultWindow(t), nil, slog.Default())

	_, err := svc.Update(context.Background(), uuid.MustParse("00000000-0000-0000-0000-000000000007"), validInput())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, store.ErrNotFound)
	}
}

func TestServiceCancel_NotFound(t *testing.T) {
	svc := NewService(&fakeBookingRepo{
		deleteFn: func(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
			return domain.Booking{}, store.ErrNotFound
		},
	}, activeRoomRepo(), defaultWindow(t), nil, slog.Default())

	if err := svc.Cancel(context.Background(), uuid.MustParse("00000000-0000-0000-0000-000000000007")); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, store.ErrNotFound)
	}
}
