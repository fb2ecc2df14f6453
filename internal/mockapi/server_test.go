package mockapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk/internal/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv := NewServer(Config{GinMode: gin.TestMode})
	srv.Seed()
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func loginAs(t *testing.T, srv *Server, email, password string) string {
	t.Helper()
	w := doJSON(t, srv, "POST", "/api/auth/login", "", models.LoginRequest{
		Email:    email,
		Password: password,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "POST", "/api/auth/register", "", models.RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "bobpassword",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, models.RoleUser, user.Role)

	token := loginAs(t, srv, "bob@example.com", "bobpassword")
	assert.NotEmpty(t, token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "POST", "/api/auth/register", "", models.RegisterRequest{
		Username: "dupe",
		Email:    "alice@eventdesk.local",
		Password: "password1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "POST", "/api/auth/login", "", models.LoginRequest{
		Email:    "alice@eventdesk.local",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerify(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "POST", "/api/auth/verify", "", models.VerifyRequest{
		Email:            "alice@eventdesk.local",
		VerificationCode: "123456",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.VerifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Verified)
}

func TestListEventsIsPublic(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "GET", "/api/events", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var events []models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	assert.Len(t, events, 2)
}

func TestCreateEventRequiresOrganizer(t *testing.T) {
	srv := newTestServer(t)
	req := validEventRequest()

	w := doJSON(t, srv, "POST", "/api/events", "", req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	userToken := loginAs(t, srv, "alice@eventdesk.local", "alice1234")
	w = doJSON(t, srv, "POST", "/api/events", userToken, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	orgToken := loginAs(t, srv, "organizer@eventdesk.local", "organizer1")
	w = doJSON(t, srv, "POST", "/api/events", orgToken, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp models.CreateEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Test Event", resp.Event.Title)
	assert.NotZero(t, resp.Event.ID)
}

func TestUpdateEventOwnershipEnforced(t *testing.T) {
	srv := newTestServer(t)

	other := loginAs(t, srv, registerOrganizer(t, srv, "other@example.com"), "password1")
	w := doJSON(t, srv, "PUT", "/api/events/1", other, validEventRequest())
	assert.Equal(t, http.StatusForbidden, w.Code)

	owner := loginAs(t, srv, "organizer@eventdesk.local", "organizer1")
	w = doJSON(t, srv, "PUT", "/api/events/1", owner, validEventRequest())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteEvent(t *testing.T) {
	srv := newTestServer(t)
	owner := loginAs(t, srv, "organizer@eventdesk.local", "organizer1")

	w := doJSON(t, srv, "DELETE", "/api/events/1", owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, "GET", "/api/events/1", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadEventImage(t *testing.T) {
	srv := newTestServer(t)
	owner := loginAs(t, srv, "organizer@eventdesk.local", "organizer1")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "poster.png")
	require.NoError(t, err)
	part.Write([]byte("png-bytes"))
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest("POST", "/api/events/1/image", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+owner)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.UploadImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.ImageURL, "/static/uploads/")
	assert.Contains(t, resp.ImageURL, ".png")

	// The stored event now carries the reference.
	event, ok := srv.Store().GetEvent(1)
	require.True(t, ok)
	assert.Equal(t, resp.ImageURL, event.ImageURL)
}

func TestReserveDecrementsInventory(t *testing.T) {
	srv := newTestServer(t)
	token := loginAs(t, srv, "alice@eventdesk.local", "alice1234")

	w := doJSON(t, srv, "POST", "/api/reservations/reserve", token, models.ReserveRequest{
		EventID:  1,
		Quantity: 3,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var reservation models.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reservation))
	assert.Equal(t, models.ReservationPending, reservation.Status)

	event, _ := srv.Store().GetEvent(1)
	assert.Equal(t, 3, event.TicketsSold)
}

func TestReserveRejectsOversell(t *testing.T) {
	srv := newTestServer(t)
	token := loginAs(t, srv, "alice@eventdesk.local", "alice1234")

	event, _ := srv.Store().GetEvent(1)
	for sold := 0; sold < event.TotalTickets; sold += 4 {
		quantity := min(4, event.TotalTickets-sold)
		w := doJSON(t, srv, "POST", "/api/reservations/reserve", token, models.ReserveRequest{
			EventID:  1,
			Quantity: quantity,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, srv, "POST", "/api/reservations/reserve", token, models.ReserveRequest{
		EventID:  1,
		Quantity: 1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Not enough tickets available", resp.Text())
}

// Two clients race for the last ticket; exactly one wins.
func TestReserveLastTicketRace(t *testing.T) {
	srv := newTestServer(t)
	token := loginAs(t, srv, "alice@eventdesk.local", "alice1234")

	event, _ := srv.Store().GetEvent(1)
	_, err := srv.Store().Reserve(1, 2, event.TotalTickets-1)
	require.NoError(t, err)

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := doJSON(t, srv, "POST", "/api/reservations/reserve", token, models.ReserveRequest{
				EventID:  1,
				Quantity: 1,
			})
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	wins, losses := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			wins++
		case http.StatusConflict:
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
}

func TestReservationListAndCancel(t *testing.T) {
	srv := newTestServer(t)
	token := loginAs(t, srv, "alice@eventdesk.local", "alice1234")

	w := doJSON(t, srv, "POST", "/api/reservations/reserve", token, models.ReserveRequest{
		EventID:  1,
		Quantity: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	for _, path := range []string{"/api/reservations/user", "/api/reservations/my-reservations"} {
		w = doJSON(t, srv, "GET", path, token, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)

		var reservations []models.Reservation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reservations))
		assert.Len(t, reservations, 1, path)
	}

	w = doJSON(t, srv, "DELETE", "/api/reservations/1", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Capacity restored.
	event, _ := srv.Store().GetEvent(1)
	assert.Equal(t, 0, event.TicketsSold)
}

func TestCancelPaidReservationRejected(t *testing.T) {
	srv := newTestServer(t)
	token := loginAs(t, srv, "alice@eventdesk.local", "alice1234")

	w := doJSON(t, srv, "POST", "/api/reservations/reserve", token, models.ReserveRequest{
		EventID:  1,
		Quantity: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	event, _ := srv.Store().GetEvent(1)
	w = doJSON(t, srv, "POST", "/api/payments/pay", token, models.PaymentRequest{
		ReservationID: 1,
		Method:        "CARD",
		CardNumber:    "4242424242424242",
		CardHolder:    "Alice",
		ExpiryDate:    "12/27",
		CVV:           "123",
		Amount:        2 * event.TicketPrice,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, srv, "DELETE", "/api/reservations/1", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Tickets stay sold and the reservation stays paid.
	event, _ = srv.Store().GetEvent(1)
	assert.Equal(t, 2, event.TicketsSold)
	reservation := srv.Store().ReservationsByUser(2)[0]
	assert.Equal(t, models.ReservationPaid, reservation.Status)
}

func TestCancelSomeoneElsesReservation(t *testing.T) {
	srv := newTestServer(t)
	alice := loginAs(t, srv, "alice@eventdesk.local", "alice1234")

	w := doJSON(t, srv, "POST", "/api/reservations/reserve", alice, models.ReserveRequest{
		EventID:  1,
		Quantity: 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	doJSON(t, srv, "POST", "/api/auth/register", "", models.RegisterRequest{
		Username: "mallory",
		Email:    "mallory@example.com",
		Password: "password1",
	})
	mallory := loginAs(t, srv, "mallory@example.com", "password1")

	w = doJSON(t, srv, "DELETE", "/api/reservations/1", mallory, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPayFlow(t *testing.T) {
	srv := newTestServer(t)
	token := loginAs(t, srv, "alice@eventdesk.local", "alice1234")

	w := doJSON(t, srv, "POST", "/api/reservations/reserve", token, models.ReserveRequest{
		EventID:  1,
		Quantity: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	event, _ := srv.Store().GetEvent(1)
	payReq := models.PaymentRequest{
		ReservationID: 1,
		Method:        "CARD",
		CardNumber:    "4242424242424242",
		CardHolder:    "Alice",
		ExpiryDate:    "12/27",
		CVV:           "123",
		Amount:        2 * event.TicketPrice,
	}

	w = doJSON(t, srv, "POST", "/api/payments/pay", token, payReq)
	assert.Equal(t, http.StatusCreated, w.Code)

	var payment models.Payment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payment))
	assert.Equal(t, models.PaymentCompleted, payment.Status)

	// Paying twice fails: the reservation is no longer pending.
	w = doJSON(t, srv, "POST", "/api/payments/pay", token, payReq)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, "GET", "/api/payments/user", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var payments []models.Payment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payments))
	assert.Len(t, payments, 1)

	w = doJSON(t, srv, "GET", fmt.Sprintf("/api/payments/%d", payment.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPayWrongAmountRejected(t *testing.T) {
	srv := newTestServer(t)
	token := loginAs(t, srv, "alice@eventdesk.local", "alice1234")

	w := doJSON(t, srv, "POST", "/api/reservations/reserve", token, models.ReserveRequest{
		EventID:  1,
		Quantity: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, srv, "POST", "/api/payments/pay", token, models.PaymentRequest{
		ReservationID: 1,
		Method:        "CARD",
		CardNumber:    "4242424242424242",
		CardHolder:    "Alice",
		ExpiryDate:    "12/27",
		CVV:           "123",
		Amount:        1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPayDeclinedCard(t *testing.T) {
	srv := newTestServer(t)
	token := loginAs(t, srv, "alice@eventdesk.local", "alice1234")

	w := doJSON(t, srv, "POST", "/api/reservations/reserve", token, models.ReserveRequest{
		EventID:  1,
		Quantity: 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	event, _ := srv.Store().GetEvent(1)
	w = doJSON(t, srv, "POST", "/api/payments/pay", token, models.PaymentRequest{
		ReservationID: 1,
		Method:        "CARD",
		CardNumber:    declinedTestCard,
		CardHolder:    "Alice",
		ExpiryDate:    "12/27",
		CVV:           "123",
		Amount:        event.TicketPrice,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Reservation stays payable.
	reservation := srv.Store().ReservationsByUser(2)[0]
	assert.Equal(t, models.ReservationPending, reservation.Status)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func validEventRequest() models.EventRequest {
	start := time.Now().UTC().Add(14 * 24 * time.Hour)
	return models.EventRequest{
		Title:        "Test Event",
		Description:  "A test event",
		Location:     "Test Hall",
		Category:     "OTHER",
		StartAt:      start.Format(time.RFC3339),
		EndAt:        start.Add(2 * time.Hour).Format(time.RFC3339),
		TotalTickets: 20,
		TicketPrice:  10,
	}
}

func registerOrganizer(t *testing.T, srv *Server, email string) string {
	t.Helper()
	w := doJSON(t, srv, "POST", "/api/auth/register", "", models.RegisterRequest{
		Username: "other",
		Email:    email,
		Password: "password1",
		Role:     models.RoleOrganizer,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return email
}
