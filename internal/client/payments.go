package client

import (
	"context"
	"fmt"
	"net/http"

	"eventdesk/internal/models"
)

// PaymentClient wraps the /api/payments endpoints.
type PaymentClient struct {
	c *Client
}

// Pay submits a card payment for a pending reservation.
func (p *PaymentClient) Pay(ctx context.Context, req models.PaymentRequest) (*models.Payment, error) {
	var payment models.Payment
	if err := p.c.do(ctx, http.MethodPost, "/api/payments/pay", req, &payment, true); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListMine fetches the current user's payments.
func (p *PaymentClient) ListMine(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	if err := p.c.do(ctx, http.MethodGet, "/api/payments/user", nil, &payments, true); err != nil {
		return nil, err
	}
	return payments, nil
}

// Get fetches a single payment by id.
func (p *PaymentClient) Get(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	path := fmt.Sprintf("/api/payments/%d", id)
	if err := p.c.do(ctx, http.MethodGet, path, nil, &payment, true); err != nil {
		return nil, err
	}
	return &payment, nil
}
