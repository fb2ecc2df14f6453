// Package authoring implements event creation and editing as a two-phase
// submission: metadata first, then the optional image keyed by the returned
// event id. A phase-two failure never rolls back phase one; the event simply
// exists without its image and the caller is told so explicitly.
package authoring

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"eventdesk/internal/client"
	apperr "eventdesk/internal/errors"
	"eventdesk/internal/logger"
	"eventdesk/internal/models"
	"eventdesk/internal/notify"
)

// Categories an event can be filed under.
var Categories = []string{"MUSIC", "SPORT", "CONFERENCE", "FESTIVAL", "WORKSHOP", "OTHER"}

// ImageAttachment is an optional image to upload in phase two.
type ImageAttachment struct {
	Filename string
	Data     io.Reader
}

// Draft is the authoring form's content, validated before phase one runs.
type Draft struct {
	Title         string    `validate:"required"`
	Description   string    `validate:"required"`
	Location      string    `validate:"required"`
	Category      string    `validate:"required,oneof=MUSIC SPORT CONFERENCE FESTIVAL WORKSHOP OTHER"`
	StartAt       time.Time `validate:"required"`
	EndAt         time.Time `validate:"required,gtfield=StartAt"`
	TotalTickets  int       `validate:"required,min=1"`
	TicketPrice   float64   `validate:"min=0"`
	TermsAccepted bool      `validate:"eq=true"`

	Image *ImageAttachment `validate:"-"`
}

// ImageStatus tells the caller what happened in phase two.
type ImageStatus int

const (
	ImageNone ImageStatus = iota
	ImageUploaded
	ImageFailed
)

// SubmitResult distinguishes a fully saved event from one saved without its
// image, instead of burying the partial failure in a log line.
type SubmitResult struct {
	Event       models.Event
	ImageStatus ImageStatus
	ImageErr    error
}

// FullySaved reports whether both phases succeeded (or no image was attached).
func (r *SubmitResult) FullySaved() bool {
	return r.ImageStatus != ImageFailed
}

// Flow drives event authoring through the API gateway.
type Flow struct {
	api      *client.Client
	notifier *notify.Notifier
	validate *validator.Validate
}

func NewFlow(api *client.Client, notifier *notify.Notifier) *Flow {
	return &Flow{
		api:      api,
		notifier: notifier,
		validate: validator.New(),
	}
}

// Validate checks the draft and reports the first offending field. Runs
// before any network call; an invalid draft never reaches the backend.
func (f *Flow) Validate(d Draft) error {
	if err := f.validate.Struct(d); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok || len(fieldErrs) == 0 {
			return err
		}
		return draftFieldError(fieldErrs[0])
	}
	return nil
}

func draftFieldError(fe validator.FieldError) *apperr.ValidationError {
	field, reason := fe.Field(), "is invalid"
	switch field {
	case "Title":
		field, reason = "title", "is required"
	case "Description":
		field, reason = "description", "is required"
	case "Location":
		field, reason = "location", "is required"
	case "Category":
		field = "category"
		if fe.Tag() == "oneof" {
			reason = "must be one of the known categories"
		} else {
			reason = "must be selected"
		}
	case "StartAt":
		field, reason = "startAt", "is required"
	case "EndAt":
		field = "endAt"
		if fe.Tag() == "gtfield" {
			reason = "must be after the start time"
		} else {
			reason = "is required"
		}
	case "TotalTickets":
		field, reason = "totalTickets", "must be at least 1"
	case "TicketPrice":
		field, reason = "ticketPrice", "must not be negative"
	case "TermsAccepted":
		field, reason = "termsAccepted", "you must accept the terms"
	}
	return &apperr.ValidationError{Field: field, Reason: reason}
}

// Create runs the two phases for a new event.
func (f *Flow) Create(ctx context.Context, d Draft) (*SubmitResult, error) {
	if err := f.Validate(d); err != nil {
		return nil, err
	}

	event, err := f.api.Events().Create(ctx, d.request())
	if err != nil {
		f.notifier.Show(notify.KindError, failureText(err))
		return nil, err
	}

	return f.finishWithImage(ctx, *event, d.Image), nil
}

// Update runs the two phases against an existing event.
func (f *Flow) Update(ctx context.Context, id int64, d Draft) (*SubmitResult, error) {
	if err := f.Validate(d); err != nil {
		return nil, err
	}

	event, err := f.api.Events().Update(ctx, id, d.request())
	if err != nil {
		f.notifier.Show(notify.KindError, failureText(err))
		return nil, err
	}

	return f.finishWithImage(ctx, *event, d.Image), nil
}

// finishWithImage runs phase two. The event already exists; an upload failure
// is reported as a warning, never rolled back.
func (f *Flow) finishWithImage(ctx context.Context, event models.Event, image *ImageAttachment) *SubmitResult {
	result := &SubmitResult{Event: event}

	if image == nil {
		f.notifier.Show(notify.KindSuccess, "Event saved successfully!")
		return result
	}

	imageURL, err := f.api.Events().UploadImage(ctx, event.ID, image.Filename, image.Data)
	if err != nil {
		result.ImageStatus = ImageFailed
		result.ImageErr = err
		logger.WithContext(ctx).Warn("Image upload failed after event save",
			"event_id", event.ID, "error", err)
		f.notifier.Show(notify.KindWarning, "Event saved, but the image upload failed")
		return result
	}

	result.ImageStatus = ImageUploaded
	result.Event.ImageURL = imageURL
	f.notifier.Show(notify.KindSuccess, "Event saved successfully!")
	return result
}

func (d Draft) request() models.EventRequest {
	return models.EventRequest{
		Title:        d.Title,
		Description:  d.Description,
		Location:     d.Location,
		Category:     d.Category,
		StartAt:      d.StartAt.UTC().Format(time.RFC3339),
		EndAt:        d.EndAt.UTC().Format(time.RFC3339),
		TotalTickets: d.TotalTickets,
		TicketPrice:  d.TicketPrice,
	}
}

func failureText(err error) string {
	var apiErr *apperr.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return "Failed to save event!"
}
