// Package booking implements the reservation flow: pick a quantity within the
// available inventory, submit, reflect the new counts locally, and notify the
// user. One Flow corresponds to one open booking modal.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"eventdesk/internal/client"
	apperr "eventdesk/internal/errors"
	"eventdesk/internal/inventory"
	"eventdesk/internal/logger"
	"eventdesk/internal/models"
	"eventdesk/internal/notify"
)

// MaxPerBooking caps a single reservation regardless of inventory. Business
// rule, not an inventory constraint.
const MaxPerBooking = 4

type State int

const (
	Idle State = iota
	SelectingQuantity
	Submitting
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SelectingQuantity:
		return "selecting-quantity"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Flow drives a single booking interaction against one event.
type Flow struct {
	api        *client.Client
	projection *inventory.Projection
	notifier   *notify.Notifier

	mu          sync.Mutex
	state       State
	eventID     int64
	quantity    int
	lastError   string
	reservation *models.Reservation
}

func NewFlow(api *client.Client, projection *inventory.Projection, notifier *notify.Notifier) *Flow {
	return &Flow{
		api:        api,
		projection: projection,
		notifier:   notifier,
		state:      Idle,
	}
}

// Open starts quantity selection for the given event. Sold-out events cannot
// be opened.
func (f *Flow) Open(eventID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Idle {
		return fmt.Errorf("booking flow already open (state %s)", f.state)
	}

	avail, ok := f.projection.Availability(eventID)
	if !ok {
		return fmt.Errorf("event %d not loaded", eventID)
	}
	if avail.SoldOut {
		return apperr.ErrNotEnoughTickets
	}

	f.state = SelectingQuantity
	f.eventID = eventID
	f.quantity = 1
	f.lastError = ""
	f.reservation = nil
	return nil
}

// MaxQuantity is the selectable upper bound: min(MaxPerBooking, remaining).
func (f *Flow) MaxQuantity() int {
	f.mu.Lock()
	eventID := f.eventID
	f.mu.Unlock()

	avail, ok := f.projection.Availability(eventID)
	if !ok {
		return 0
	}
	return min(MaxPerBooking, avail.Remaining)
}

// SetQuantity updates the selection, rejecting values outside
// [1, min(MaxPerBooking, remaining)].
func (f *Flow) SetQuantity(q int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != SelectingQuantity {
		return fmt.Errorf("cannot change quantity in state %s", f.state)
	}
	if q < 1 {
		return &apperr.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}

	avail, _ := f.projection.Availability(f.eventID)
	limit := min(MaxPerBooking, avail.Remaining)
	if q > limit {
		return &apperr.ValidationError{Field: "quantity", Reason: fmt.Sprintf("must not exceed %d", limit)}
	}

	f.quantity = q
	return nil
}

// Submit sends the reservation. The inventory guard runs before any network
// call, and only one submission can be in flight: a second call while
// Submitting is rejected rather than queued. On success the projection is
// patched and the flow closes; on failure the flow returns to quantity
// selection with the chosen quantity intact.
func (f *Flow) Submit(ctx context.Context) (*models.Reservation, error) {
	f.mu.Lock()
	if f.state == Submitting {
		f.mu.Unlock()
		return nil, apperr.ErrSubmissionInFlight
	}
	if f.state != SelectingQuantity {
		f.mu.Unlock()
		return nil, fmt.Errorf("cannot submit in state %s", f.state)
	}

	eventID, quantity := f.eventID, f.quantity

	// Client-side guard: never send a request the local counts already know
	// will fail.
	avail, ok := f.projection.Availability(eventID)
	if !ok || quantity > avail.Remaining {
		f.lastError = "Not enough tickets available"
		f.mu.Unlock()
		return nil, apperr.ErrNotEnoughTickets
	}

	f.state = Submitting
	f.mu.Unlock()

	reservation, err := f.api.Reservations().Reserve(ctx, eventID, quantity)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		// No optimistic update survives a failure: counts stay untouched and
		// the server's own message is surfaced verbatim.
		f.state = SelectingQuantity
		f.lastError = failureMessage(err)
		logger.WithContext(ctx).Error("Reservation submission failed",
			"event_id", eventID, "quantity", quantity, "error", err)
		return nil, err
	}

	if err := f.projection.ApplyBooking(eventID, quantity); err != nil {
		// The booking stands server-side; a projection refusing the patch
		// means our cached counts were stale. Log and carry on.
		logger.WithContext(ctx).Warn("Projection patch refused after booking",
			"event_id", eventID, "error", err)
	}

	f.state = Success
	f.reservation = reservation
	f.notifier.Show(notify.KindSuccess, "Reservation created successfully!")
	return reservation, nil
}

// Close resets the flow to Idle so it can be reused for another event.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = Idle
	f.eventID = 0
	f.quantity = 0
	f.lastError = ""
	f.reservation = nil
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) Quantity() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quantity
}

// LastError is the user-visible message from the most recent failure.
func (f *Flow) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastError
}

// Reservation returns the created reservation after Success.
func (f *Flow) Reservation() *models.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reservation
}

// failureMessage prefers the server's own message, falling back to a generic
// one.
func failureMessage(err error) string {
	var apiErr *apperr.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	var netErr *apperr.NetworkError
	if errors.As(err, &netErr) {
		return "Could not reach the server. Please try again."
	}
	return "Failed to create reservation"
}
