package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"eventdesk/internal/models"
)

// EventClient wraps the /api/events endpoints.
type EventClient struct {
	c *Client
}

// List fetches all events. The token is attached when present but the
// endpoint works unauthenticated.
func (e *EventClient) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := e.c.do(ctx, http.MethodGet, "/api/events", nil, &events, false); err != nil {
		return nil, err
	}
	return events, nil
}

// Get fetches a single event by id.
func (e *EventClient) Get(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	path := fmt.Sprintf("/api/events/%d", id)
	if err := e.c.do(ctx, http.MethodGet, path, nil, &event, false); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create submits event metadata. Organizer-only.
func (e *EventClient) Create(ctx context.Context, req models.EventRequest) (*models.Event, error) {
	var resp models.CreateEventResponse
	if err := e.c.do(ctx, http.MethodPost, "/api/events", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp.Event, nil
}

// Update replaces an event's metadata. Organizer-only.
func (e *EventClient) Update(ctx context.Context, id int64, req models.EventRequest) (*models.Event, error) {
	var event models.Event
	path := fmt.Sprintf("/api/events/%d", id)
	if err := e.c.do(ctx, http.MethodPut, path, req, &event, true); err != nil {
		return nil, err
	}
	return &event, nil
}

// Delete removes an event. Organizer-only.
func (e *EventClient) Delete(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/events/%d", id)
	return e.c.do(ctx, http.MethodDelete, path, nil, nil, true)
}

// UploadImage attaches an image to an existing event as a multipart form with
// field "image". Keyed by the id returned from Create/Update: this is phase
// two of the authoring flow.
func (e *EventClient) UploadImage(ctx context.Context, id int64, filename string, image io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	path := fmt.Sprintf("/api/events/%d/image", id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.c.baseURL+path, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := e.c.prepare(req, true); err != nil {
		return "", err
	}

	var resp models.UploadImageResponse
	if err := e.c.send(req, &resp); err != nil {
		return "", err
	}
	return resp.ImageURL, nil
}
