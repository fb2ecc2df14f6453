package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk/internal/client"
	apperr "eventdesk/internal/errors"
	"eventdesk/internal/models"
	"eventdesk/internal/notify"
)

func validCard() CardDetails {
	return CardDetails{
		CardNumber: "4242424242424242",
		CardHolder: "Jane Doe",
		ExpiryDate: "12/27",
		CVV:        "123",
	}
}

func TestValidateCard(t *testing.T) {
	assert.NoError(t, validateCard(validCard()))
}

func TestValidateCardRejectsBadNumber(t *testing.T) {
	card := validCard()
	card.CardNumber = "1234567890123456"

	var valErr *apperr.ValidationError
	err := validateCard(card)
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "cardNumber", valErr.Field)
}

func TestValidateCardRejectsBadExpiry(t *testing.T) {
	for _, expiry := range []string{"13/27", "00/27", "1/27", "12-27", "12/271"} {
		card := validCard()
		card.ExpiryDate = expiry

		var valErr *apperr.ValidationError
		err := validateCard(card)
		require.ErrorAs(t, err, &valErr, expiry)
		assert.Equal(t, "expiryDate", valErr.Field, expiry)
	}
}

func TestValidateCardRejectsBadCVV(t *testing.T) {
	for _, cvv := range []string{"", "12", "12345", "abc"} {
		card := validCard()
		card.CVV = cvv

		var valErr *apperr.ValidationError
		err := validateCard(card)
		require.ErrorAs(t, err, &valErr, cvv)
		assert.Equal(t, "cvv", valErr.Field, cvv)
	}
}

func TestValidateCardRejectsMissingHolder(t *testing.T) {
	card := validCard()
	card.CardHolder = ""

	var valErr *apperr.ValidationError
	err := validateCard(card)
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "cardHolder", valErr.Field)
}

// paymentBackend serves the event fetch and the pay endpoint.
func paymentBackend(t *testing.T, price float64) (*httptest.Server, *models.PaymentRequest) {
	t.Helper()
	var got models.PaymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/events/2":
			json.NewEncoder(w).Encode(models.Event{ID: 2, TicketPrice: price, TotalTickets: 10})
		case "/api/payments/pay":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(models.Payment{
				ID:            9,
				ReservationID: got.ReservationID,
				Amount:        got.Amount,
				Status:        models.PaymentCompleted,
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func pendingReservation() models.Reservation {
	return models.Reservation{ID: 4, EventID: 2, Quantity: 3, Status: models.ReservationPending}
}

func TestPaymentRecomputesAmount(t *testing.T) {
	srv, got := paymentBackend(t, 19.5)

	api := client.New(client.Config{BaseURL: srv.URL}, staticToken("tok"))
	form := NewPaymentForm(api, notify.New(), pendingReservation())

	payment, err := form.Submit(context.Background(), validCard())
	require.NoError(t, err)

	// Amount comes from quantity times the event's current price, never from
	// anything the caller supplied.
	assert.Equal(t, 3*19.5, got.Amount)
	assert.Equal(t, 3*19.5, payment.Amount)
	assert.Equal(t, models.PaymentCompleted, payment.Status)
	assert.Equal(t, models.ReservationPaid, form.Reservation().Status)
}

func TestPaymentCannotBeRepeatedAfterSuccess(t *testing.T) {
	srv, _ := paymentBackend(t, 10)

	api := client.New(client.Config{BaseURL: srv.URL}, staticToken("tok"))
	form := NewPaymentForm(api, notify.New(), pendingReservation())

	_, err := form.Submit(context.Background(), validCard())
	require.NoError(t, err)

	// The status write under the form's lock is what the next attempt reads.
	_, err = form.Submit(context.Background(), validCard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only pending reservations can be paid")
}

func TestPaymentRejectsNonPendingReservation(t *testing.T) {
	form := NewPaymentForm(nil, notify.New(), models.Reservation{
		ID: 4, Status: models.ReservationPaid,
	})

	_, err := form.Submit(context.Background(), validCard())
	assert.Error(t, err)
}

func TestPaymentValidatesBeforeNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	api := client.New(client.Config{BaseURL: srv.URL}, staticToken("tok"))
	form := NewPaymentForm(api, notify.New(), pendingReservation())

	card := validCard()
	card.CVV = "x"
	_, err := form.Submit(context.Background(), card)

	var valErr *apperr.ValidationError
	assert.ErrorAs(t, err, &valErr)
	assert.Equal(t, 0, calls)
}

func TestPaymentFailureKeepsReservationPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/events/2" {
			json.NewEncoder(w).Encode(models.Event{ID: 2, TicketPrice: 10, TotalTickets: 10})
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "card declined"}`))
	}))
	defer srv.Close()

	api := client.New(client.Config{BaseURL: srv.URL}, staticToken("tok"))
	form := NewPaymentForm(api, notify.New(), pendingReservation())

	_, err := form.Submit(context.Background(), validCard())
	require.Error(t, err)
	assert.Equal(t, models.ReservationPending, form.Reservation().Status)

	// Retry is possible after a failure.
	srvRetry, _ := paymentBackend(t, 10)
	form.api = client.New(client.Config{BaseURL: srvRetry.URL}, staticToken("tok"))
	_, err = form.Submit(context.Background(), validCard())
	assert.NoError(t, err)
}
