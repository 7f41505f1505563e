package tasks

import (
	"fmt"

	"github.com/google/uuid"
)

// Payloads carry fully resolved values captured at enqueue time. Workers never
// read the booking or listing back to render a message.

type BookingConfirmation struct {
	BookingID      uuid.UUID `json:"booking_id"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`
	ListingTitle   string    `json:"listing_title"`
	ListingCity    string    `json:"listing_city"`
	CheckIn        string    `json:"check_in"`
	CheckOut       string    `json:"check_out"`
	Nights         int       `json:"nights"`
	GuestCount     int       `json:"guest_count"`
	TotalPrice     string    `json:"total_price"`
	Status         string    `json:"status"`
}

func (p BookingConfirmation) Validate() error {
	return requireRecipient(p.BookingID, p.RecipientEmail)
}

type BookingReminder struct {
	BookingID        uuid.UUID `json:"booking_id"`
	RecipientEmail   string    `json:"recipient_email"`
	RecipientName    string    `json:"recipient_name"`
	ListingTitle     string    `json:"listing_title"`
	ListingCity      string    `json:"listing_city"`
	CheckIn          string    `json:"check_in"`
	DaysUntilCheckIn int       `json:"days_until_check_in"`
}

func (p BookingReminder) Validate() error {
	return requireRecipient(p.BookingID, p.RecipientEmail)
}

type BookingCancellation struct {
	BookingID      uuid.UUID `json:"booking_id"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`
	ListingTitle   string    `json:"listing_title"`
	CheckIn        string    `json:"check_in"`
	CheckOut       string    `json:"check_out"`
	Reason         string    `json:"reason,omitempty"`
}

func (p BookingCancellation) Validate() error {
	return requireRecipient(p.BookingID, p.RecipientEmail)
}

// AdminNotification falls back to the configured admin addresses when
// Recipients is empty.
type AdminNotification struct {
	Subject    string   `json:"subject"`
	Message    string   `json:"message"`
	Recipients []string `json:"recipients,omitempty"`
}

func (p AdminNotification) Validate() error {
	if p.Subject == "" || p.Message == "" {
		return fmt.Errorf("%w: subject and message are required", ErrPermanent)
	}
	return nil
}

type CleanupOldLogs struct {
	RetentionDays int `json:"retention_days"`
}

type DailyReminders struct {
	LeadDays int `json:"lead_days"`
}

type CompleteBookings struct{}

type BookingAnalytics struct{}

func requireRecipient(bookingID uuid.UUID, email string) error {
	if bookingID == uuid.Nil {
		return fmt.Errorf("%w: booking_id is required", ErrPermanent)
	}
	if email == "" {
		return fmt.Errorf("%w: recipient_email is required", ErrPermanent)
	}
	return nil
}
