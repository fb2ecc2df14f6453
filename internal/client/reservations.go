package client

import (
	"context"
	"fmt"
	"net/http"

	apperr "eventdesk/internal/errors"
	"eventdesk/internal/models"
)

// ReservationClient wraps the /api/reservations endpoints.
type ReservationClient struct {
	c *Client
}

// Reserve books quantity tickets for an event. The backend is the final
// arbiter of availability; a sold-out race comes back as an APIError.
func (r *ReservationClient) Reserve(ctx context.Context, eventID int64, quantity int) (*models.Reservation, error) {
	req := models.ReserveRequest{EventID: eventID, Quantity: quantity}
	var reservation models.Reservation
	if err := r.c.do(ctx, http.MethodPost, "/api/reservations/reserve", req, &reservation, true); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ListMine fetches the current user's reservations. The contract names two
// paths for this; the newer one is tried first.
func (r *ReservationClient) ListMine(ctx context.Context) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.c.do(ctx, http.MethodGet, "/api/reservations/user", nil, &reservations, true)
	if apperr.IsStatus(err, http.StatusNotFound) {
		err = r.c.do(ctx, http.MethodGet, "/api/reservations/my-reservations", nil, &reservations, true)
	}
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// Cancel deletes a pending reservation, conceptually restoring the event's
// remaining tickets.
func (r *ReservationClient) Cancel(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/reservations/%d", id)
	return r.c.do(ctx, http.MethodDelete, path, nil, nil, true)
}
