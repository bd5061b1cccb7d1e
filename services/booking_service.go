package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"whitelotus/models"
	"whitelotus/monitoring"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/security"
)

const referenceSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

type BookingService struct {
	app      core.App
	notifier *Notifier
}

func NewBookingService(app core.App, notifier *Notifier) *BookingService {
	return &BookingService{app: app, notifier: notifier}
}

type BookingRequest struct {
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Date      string         `json:"date"` // YYYY-MM-DD
	StartTime string         `json:"start_time"`
	EndTime   string         `json:"end_time"`
	Guests    int            `json:"guests"`
	Services  []string       `json:"services"`
	Details   map[string]any `json:"details"`
}

// Create stores a pending booking request, mails both sides and pings the
// back office.
func (s *BookingService) Create(ctx context.Context, req BookingRequest) (models.Booking, error) {
	if req.Name == "" || req.Email == "" {
		return models.Booking{}, fmt.Errorf("%w: name and email are required", models.ErrValidation)
	}
	if !strings.Contains(req.Email, "@") {
		return models.Booking{}, fmt.Errorf("%w: invalid email", models.ErrValidation)
	}
	if req.Guests <= 0 {
		return models.Booking{}, fmt.Errorf("%w: guest count must be positive", models.ErrValidation)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return models.Booking{}, fmt.Errorf("%w: date must be YYYY-MM-DD", models.ErrValidation)
	}

	reference, err := s.uniqueReference(req.Email, date)
	if err != nil {
		return models.Booking{}, err
	}

	collection, err := s.app.FindCollectionByNameOrId("bookings")
	if err != nil {
		return models.Booking{}, err
	}
	record := core.NewRecord(collection)
	record.Set("reference_id", reference)
	record.Set("name", req.Name)
	record.Set("email", req.Email)
	record.Set("phone", req.Phone)
	record.Set("date", date)
	record.Set("start_time", req.StartTime)
	record.Set("end_time", req.EndTime)
	record.Set("guests", req.Guests)
	record.Set("services", req.Services)
	record.Set("details", req.Details)
	record.Set("status", models.BookingStatusPending)
	if err := s.app.Save(record); err != nil {
		return models.Booking{}, fmt.Errorf("booking: save request: %w", err)
	}

	booking := models.BookingFromRecord(record)
	monitoring.TrackBookingRequest()

	go s.notifier.NotifyAdmin(
		"New venue booking request "+reference,
		fmt.Sprintf("<p>%s (%s) requested %s %s-%s for %d guests.</p>",
			req.Name, req.Email, req.Date, req.StartTime, req.EndTime, req.Guests),
	)
	go s.notifier.SendMail(req.Email,
		"We received your booking request",
		fmt.Sprintf("<p>Thank you %s, your request %s is pending. We will confirm by email.</p>", req.Name, reference),
	)
	go s.notifier.Publish("booking_created", map[string]any{
		"reference": reference,
		"date":      req.Date,
		"guests":    req.Guests,
	})

	return booking, nil
}

// pickReference returns base when free, otherwise retries with random
// suffixed candidates, checking each one before use. The final fallback is
// a fully random token that cannot reasonably collide.
func pickReference(base string, free func(string) (bool, error)) (string, error) {
	if ok, err := free(base); err != nil {
		return "", err
	} else if ok {
		return base, nil
	}
	for i := 0; i < 5; i++ {
		candidate := base + "-" + security.RandomStringWithAlphabet(4, referenceSuffixAlphabet)
		if ok, err := free(candidate); err != nil {
			return "", err
		} else if ok {
			return candidate, nil
		}
	}
	return "bk-" + security.RandomStringWithAlphabet(12, referenceSuffixAlphabet), nil
}

// uniqueReference derives the email-and-date reference and resolves
// collisions against the store.
func (s *BookingService) uniqueReference(email string, date time.Time) (string, error) {
	return pickReference(models.BookingReference(email, date), s.referenceFree)
}

func (s *BookingService) referenceFree(reference string) (bool, error) {
	_, err := s.app.FindFirstRecordByFilter("bookings", "reference_id = {:ref}", dbx.Params{"ref": reference})
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, sql.ErrNoRows):
		return true, nil
	default:
		return false, err
	}
}

// SetStatus moves a booking between pending, confirmed and cancelled and
// mails the requester about the outcome.
func (s *BookingService) SetStatus(ctx context.Context, bookingID, status, adminNote string) (models.Booking, error) {
	switch status {
	case models.BookingStatusPending, models.BookingStatusConfirmed, models.BookingStatusCancelled:
	default:
		return models.Booking{}, fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
	}

	record, err := s.app.FindRecordById("bookings", bookingID)
	if err != nil {
		return models.Booking{}, fmt.Errorf("%w: booking", models.ErrNotFound)
	}
	record.Set("status", status)
	if adminNote != "" {
		record.Set("admin_note", adminNote)
	}
	if err := s.app.Save(record); err != nil {
		return models.Booking{}, err
	}
	booking := models.BookingFromRecord(record)

	if status == models.BookingStatusConfirmed || status == models.BookingStatusCancelled {
		go s.notifier.SendMail(booking.Email,
			"Your booking "+booking.ReferenceID+" is "+status,
			fmt.Sprintf("<p>Your booking %s for %s is now %s.</p>",
				booking.ReferenceID, booking.Date.Format("2006-01-02"), status),
		)
	}
	return booking, nil
}

// AddComment attaches a visitor comment to a booking. Comments start
// pending and only show publicly once accepted.
func (s *BookingService) AddComment(ctx context.Context, bookingID, authorEmail, body string) (models.BookingComment, error) {
	if strings.TrimSpace(body) == "" {
		return models.BookingComment{}, fmt.Errorf("%w: comment body is required", models.ErrValidation)
	}
	if _, err := s.app.FindRecordById("bookings", bookingID); err != nil {
		return models.BookingComment{}, fmt.Errorf("%w: booking", models.ErrNotFound)
	}

	collection, err := s.app.FindCollectionByNameOrId("booking_comments")
	if err != nil {
		return models.BookingComment{}, err
	}
	record := core.NewRecord(collection)
	record.Set("booking", bookingID)
	record.Set("author_email", authorEmail)
	record.Set("body", body)
	record.Set("status", models.CommentStatusPending)
	if err := s.app.Save(record); err != nil {
		return models.BookingComment{}, err
	}
	return models.BookingCommentFromRecord(record), nil
}

// ModerateComment accepts or declines a pending comment.
func (s *BookingService) ModerateComment(ctx context.Context, commentID, status string) (models.BookingComment, error) {
	if status != models.CommentStatusAccepted && status != models.CommentStatusDeclined {
		return models.BookingComment{}, fmt.Errorf("%w: unknown comment status %q", models.ErrValidation, status)
	}
	record, err := s.app.FindRecordById("booking_comments", commentID)
	if err != nil {
		return models.BookingComment{}, fmt.Errorf("%w: comment", models.ErrNotFound)
	}
	record.Set("status", status)
	if err := s.app.Save(record); err != nil {
		return models.BookingComment{}, err
	}
	return models.BookingCommentFromRecord(record), nil
}

// Get returns a booking with its comments. Non-admin callers only see
// accepted comments.
func (s *BookingService) Get(ctx context.Context, bookingID string, includePending bool) (models.Booking, []models.BookingComment, error) {
	record, err := s.app.FindRecordById("bookings", bookingID)
	if err != nil {
		return models.Booking{}, nil, fmt.Errorf("%w: booking", models.ErrNotFound)
	}
	booking := models.BookingFromRecord(record)

	filter := "booking = {:booking} && status = 'accepted'"
	if includePending {
		filter = "booking = {:booking}"
	}
	records, err := s.app.FindRecordsByFilter(
		"booking_comments",
		filter,
		"+created",
		0,
		0,
		dbx.Params{"booking": bookingID},
	)
	if err != nil {
		return booking, nil, err
	}
	comments := make([]models.BookingComment, len(records))
	for i, r := range records {
		comments[i] = models.BookingCommentFromRecord(r)
	}
	return booking, comments, nil
}

// List returns bookings newest first, optionally filtered by status.
func (s *BookingService) List(ctx context.Context, status string, limit, offset int) ([]models.Booking, error) {
	filter := "id != ''"
	params := dbx.Params{}
	if status != "" {
		filter = "status = {:status}"
		params["status"] = status
	}
	records, err := s.app.FindRecordsByFilter("bookings", filter, "-created", limit, offset, params)
	if err != nil {
		return nil, err
	}
	bookings := make([]models.Booking, len(records))
	for i, r := range records {
		bookings[i] = models.BookingFromRecord(r)
	}
	return bookings, nil
}
