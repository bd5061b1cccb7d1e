package models

import (
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"

	CommentStatusPending  = "pending"
	CommentStatusAccepted = "accepted"
	CommentStatusDeclined = "declined"
)

type Booking struct {
	ID          string         `json:"id"`
	ReferenceID string         `json:"reference_id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
	Date        time.Time      `json:"date"`
	StartTime   string         `json:"start_time"`
	EndTime     string         `json:"end_time"`
	Guests      int            `json:"guests"`
	Services    []string       `json:"services"`
	Details     map[string]any `json:"details"`
	Status      string         `json:"status"`
	AdminNote   string         `json:"admin_note"`
	Created     time.Time      `json:"created"`
}

func BookingFromRecord(r *core.Record) Booking {
	b := Booking{
		ID:          r.Id,
		ReferenceID: r.GetString("reference_id"),
		Name:        r.GetString("name"),
		Email:       r.GetString("email"),
		Phone:       r.GetString("phone"),
		Date:        r.GetDateTime("date").Time(),
		StartTime:   r.GetString("start_time"),
		EndTime:     r.GetString("end_time"),
		Guests:      r.GetInt("guests"),
		Status:      r.GetString("status"),
		AdminNote:   r.GetString("admin_note"),
		Created:     r.GetDateTime("created").Time(),
	}
	r.UnmarshalJSONField("services", &b.Services)
	r.UnmarshalJSONField("details", &b.Details)
	return b
}

type BookingComment struct {
	ID          string    `json:"id"`
	BookingID   string    `json:"booking_id"`
	AuthorEmail string    `json:"author_email"`
	Body        string    `json:"body"`
	Status      string    `json:"status"`
	Created     time.Time `json:"created"`
}

func BookingCommentFromRecord(r *core.Record) BookingComment {
	return BookingComment{
		ID:          r.Id,
		BookingID:   r.GetString("booking"),
		AuthorEmail: r.GetString("author_email"),
		Body:        r.GetString("body"),
		Status:      r.GetString("status"),
		Created:     r.GetDateTime("created").Time(),
	}
}

// BookingReference builds the human-readable id: the lowercased local part
// of the contact email joined with the day and month of the requested date.
func BookingReference(email string, date time.Time) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	local = strings.ToLower(strings.TrimSpace(local))
	return local + "-" + date.Format("02-01")
}
