package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"roomly/backend/internal/domain"
)

// Dispatcher fans a committed booking write out to the messenger and the
// sheet mirror. Dispatch happens on a goroutine detached from the request
// context; errors are logged and swallowed.
type Dispatcher struct {
	messenger   Messenger
	mirror      SheetMirror
	destination string
	timeout     time.Duration
	log         *slog.Logger

	wg sync.WaitGroup
}

func NewDispatcher(messenger Messenger, mirror SheetMirror, destination string, timeout time.Duration, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{
		messenger:   messenger,
		mirror:      mirror,
		destination: destination,
		timeout:     timeout,
		log:         log.With(slog.String("component", "notify.dispatcher")),
	}
}

func (d *Dispatcher) BookingCreated(booking domain.Booking) {
	d.dispatch("created", func(ctx context.Context) {
		d.send(ctx, fmt.Sprintf(
			"New booking\nRoom: %s\nDate: %s\nTime: %s - %s\nAgenda: %s\nRequester: %s\nUnit: %s",
			booking.Room, booking.Date, booking.StartMinutes, booking.EndMinutes,
			booking.Agenda, booking.Requester, booking.Unit,
		))
		d.append(ctx, booking)
	})
}

func (d *Dispatcher) BookingUpdated(old, updated domain.Booking) {
	d.dispatch("updated", func(ctx context.Context) {
		d.send(ctx, fmt.Sprintf(
			"Booking updated\nRoom: %s\nDate: %s\nTime: %s - %s\nAgenda: %s\nRequester: %s\nUnit: %s",
			updated.Room, updated.Date, updated.StartMinutes, updated.EndMinutes,
			updated.Agenda, updated.Requester, updated.Unit,
		))
		// The mirror has no row ids: replace means delete the old row, append the new.
		d.deleteRow(ctx, old)
		d.append(ctx, updated)
	})
}

func (d *Dispatcher) BookingCancelled(booking domain.Booking) {
	d.dispatch("cancelled", func(ctx context.Context) {
		d.send(ctx, fmt.Sprintf(
			"Booking cancelled\nRoom: %s\nDate: %s\nTime: %s - %s\nRequester: %s\nUnit: %s",
			booking.Room, booking.Date, booking.StartMinutes, booking.EndMinutes,
			booking.Requester, booking.Unit,
		))
		d.deleteRow(ctx, booking)
	})
}

// Wait blocks until in-flight dispatches finish. Used on shutdown and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(event string, fn func(ctx context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		fn(ctx)
		d.log.Debug("notifications dispatched", slog.String("event", event))
	}()
}

func (d *Dispatcher) send(ctx context.Context, text string) {
	if d.messenger == nil {
		return
	}
	if err := d.messenger.Send(ctx, d.destination, text); err != nil {
		d.log.Warn("message send failed", slog.Any("err", err))
	}
}

func (d *Dispatcher) append(ctx context.Context, booking domain.Booking) {
	if d.mirror == nil {
		return
	}
	err := d.mirror.Append(ctx, SheetRow{
		Room:      booking.Room,
		Date:      booking.Date,
		StartTime: booking.StartMinutes.String(),
		EndTime:   booking.EndMinutes.String(),
		Requester: booking.Requester,
		Unit:      booking.Unit,
		Agenda:    booking.Agenda,
	})
	if err != nil {
		d.log.Warn("sheet append failed", slog.Any("err", err))
	}
}

func (d *Dispatcher) deleteRow(ctx context.Context, booking domain.Booking) {
	if d.mirror == nil {
		return
	}
	err := d.mirror.DeleteByMatch(ctx, MatchKey{
		Room:      booking.Room,
		Date:      booking.Date,
		StartTime: booking.StartMinutes.String(),
		Requester: booking.Requester,
	})
	if err != nil {
		d.log.Warn("sheet delete failed", slog.Any("err", err))
	}
}
