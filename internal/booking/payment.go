package booking

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"eventdesk/internal/client"
	apperr "eventdesk/internal/errors"
	"eventdesk/internal/logger"
	"eventdesk/internal/models"
	"eventdesk/internal/notify"
)

// CardDetails is what the payment form collects. Validation happens entirely
// client-side before anything touches the network.
type CardDetails struct {
	CardNumber string `validate:"required,credit_card"`
	CardHolder string `validate:"required"`
	ExpiryDate string `validate:"required"`
	CVV        string `validate:"required,numeric,min=3,max=4"`
}

var cardValidate = validator.New()

var expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)

func validateCard(card CardDetails) error {
	if err := cardValidate.Struct(card); err != nil {
		var fieldErrs validator.ValidationErrors
		if ok := asValidationErrors(err, &fieldErrs); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &apperr.ValidationError{
				Field:  cardFieldName(fe.Field()),
				Reason: reasonFor(fe),
			}
		}
		return err
	}
	if !expiryPattern.MatchString(card.ExpiryDate) {
		return &apperr.ValidationError{Field: "expiryDate", Reason: "must be in MM/YY format"}
	}
	return nil
}

func cardFieldName(field string) string {
	if field == "CVV" {
		return "cvv"
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "credit_card":
		return "is not a valid card number"
	case "numeric":
		return "must contain only digits"
	case "min", "max":
		return "has the wrong length"
	default:
		return "is invalid"
	}
}

// PaymentForm drives one payment submission for a pending reservation. Like
// the booking flow, a single request may be in flight at a time, and a failed
// payment leaves everything in place so the user does not lose entered data.
type PaymentForm struct {
	api         *client.Client
	notifier    *notify.Notifier
	reservation models.Reservation

	mu       sync.Mutex
	inFlight bool
	payment  *models.Payment
}

func NewPaymentForm(api *client.Client, notifier *notify.Notifier, reservation models.Reservation) *PaymentForm {
	return &PaymentForm{
		api:         api,
		notifier:    notifier,
		reservation: reservation,
	}
}

// Submit validates the card, recomputes the amount from the reservation's
// quantity and the event's current ticket price, and sends the payment. The
// amount is never taken from a cached total.
func (p *PaymentForm) Submit(ctx context.Context, card CardDetails) (*models.Payment, error) {
	if err := validateCard(card); err != nil {
		return nil, err
	}

	// Status and in-flight share the lock with the success path's writes.
	p.mu.Lock()
	if p.reservation.Status != models.ReservationPending {
		p.mu.Unlock()
		return nil, fmt.Errorf("reservation %d is %s, only pending reservations can be paid",
			p.reservation.ID, p.reservation.Status)
	}
	if p.inFlight {
		p.mu.Unlock()
		return nil, apperr.ErrSubmissionInFlight
	}
	p.inFlight = true
	reservation := p.reservation
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	event, err := p.api.Events().Get(ctx, reservation.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event for amount: %w", err)
	}
	amount := float64(reservation.Quantity) * event.TicketPrice

	payment, err := p.api.Payments().Pay(ctx, models.PaymentRequest{
		ReservationID: reservation.ID,
		Method:        "CARD",
		CardNumber:    card.CardNumber,
		CardHolder:    card.CardHolder,
		ExpiryDate:    card.ExpiryDate,
		CVV:           card.CVV,
		Amount:        amount,
	})
	if err != nil {
		logger.WithContext(ctx).Error("Payment failed",
			"reservation_id", reservation.ID, "error", err)
		return nil, err
	}

	p.mu.Lock()
	p.payment = payment
	p.reservation.Status = models.ReservationPaid
	p.mu.Unlock()

	p.notifier.Show(notify.KindSuccess, "Payment completed successfully!")
	return payment, nil
}

// Reservation returns the form's reservation with any status transition
// applied.
func (p *PaymentForm) Reservation() models.Reservation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reservation
}
