package booking

import (
	"context"
	"fmt"

	"eventdesk/internal/client"
	"eventdesk/internal/inventory"
	"eventdesk/internal/logger"
	"eventdesk/internal/models"
	"eventdesk/internal/notify"
)

// Canceller handles user-initiated reservation cancellation and the matching
// inventory restore.
type Canceller struct {
	api        *client.Client
	projection *inventory.Projection
	notifier   *notify.Notifier
}

func NewCanceller(api *client.Client, projection *inventory.Projection, notifier *notify.Notifier) *Canceller {
	return &Canceller{api: api, projection: projection, notifier: notifier}
}

// Cancel deletes the reservation server-side, then restores the local
// remaining count. Nothing is patched before the backend confirms. Only
// pending reservations can be cancelled; a paid one would need a refund,
// which no endpoint offers.
func (c *Canceller) Cancel(ctx context.Context, r models.Reservation) error {
	if r.Status != models.ReservationPending {
		return fmt.Errorf("reservation %d is %s, only pending reservations can be cancelled", r.ID, r.Status)
	}

	if err := c.api.Reservations().Cancel(ctx, r.ID); err != nil {
		c.notifier.Show(notify.KindError, failureMessage(err))
		return err
	}

	if err := c.projection.ApplyCancellation(r.EventID, r.Quantity); err != nil {
		// Cache may not hold the event (cancelled from the reservations view
		// before the listing was loaded). The next fetch reconciles.
		logger.WithContext(ctx).Debug("Skipping projection restore",
			"event_id", r.EventID, "error", err)
	}

	c.notifier.Show(notify.KindSuccess, "Reservation cancelled")
	return nil
}
