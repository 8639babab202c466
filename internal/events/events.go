package events

import (
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	ID          string    `json:"id"`
	PublishedAt time.Time `json:"published_at"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

type BookingConfirmed struct {
	Header EventHeader `json:"header"`

	BookingID   string   `json:"booking_id"`
	PNR         string   `json:"pnr"`
	UserID      string   `json:"user_id"`
	TrainNumber string   `json:"train_number"`
	ClassCode   string   `json:"class"`
	JourneyDate string   `json:"journey_date"`
	Seats       []string `json:"seats"`
	TotalFare   float64  `json:"total_fare"`
}

type BookingCancelled struct {
	Header EventHeader `json:"header"`

	BookingID    string   `json:"booking_id"`
	PNR          string   `json:"pnr"`
	UserID       string   `json:"user_id"`
	TrainNumber  string   `json:"train_number"`
	ClassCode    string   `json:"class"`
	Seats        []string `json:"seats"`
	RefundAmount float64  `json:"refund_amount"`
}
