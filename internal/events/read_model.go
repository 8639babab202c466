package events

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
)

// BookingActivity is the ops view of one booking, built from events.
type BookingActivity struct {
	BookingID    string     `json:"bookingId"`
	PNR          string     `json:"pnr"`
	UserID       string     `json:"userId"`
	TrainNumber  string     `json:"trainNumber"`
	ClassCode    string     `json:"class"`
	JourneyDate  string     `json:"journeyDate,omitempty"`
	Seats        []string   `json:"seats"`
	Status       string     `json:"status"`
	TotalFare    float64    `json:"totalFare"`
	RefundAmount float64    `json:"refundAmount"`
	ConfirmedAt  *time.Time `json:"confirmedAt,omitempty"`
	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
}

// ActivityReadModel keeps booking activity in memory. Handlers tolerate
// duplicated and reordered deliveries.
type ActivityReadModel struct {
	mu       sync.RWMutex
	bookings map[string]BookingActivity
	seen     map[string]struct{}
}

func NewActivityReadModel() *ActivityReadModel {
	return &ActivityReadModel{
		bookings: make(map[string]BookingActivity),
		seen:     make(map[string]struct{}),
	}
}

func (m *ActivityReadModel) OnBookingConfirmed(ctx context.Context, event *BookingConfirmed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.duplicate(event.Header.ID) {
		return nil
	}

	a := m.bookings[event.BookingID]
	a.BookingID = event.BookingID
	a.PNR = event.PNR
	a.UserID = event.UserID
	a.TrainNumber = event.TrainNumber
	a.ClassCode = event.ClassCode
	a.JourneyDate = event.JourneyDate
	a.Seats = append([]string(nil), event.Seats...)
	a.TotalFare = event.TotalFare
	at := event.Header.PublishedAt
	a.ConfirmedAt = &at
	if a.CancelledAt == nil {
		a.Status = "Confirmed"
	}
	m.bookings[event.BookingID] = a
	return nil
}

func (m *ActivityReadModel) OnBookingCancelled(ctx context.Context, event *BookingCancelled) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.duplicate(event.Header.ID) {
		return nil
	}

	a := m.bookings[event.BookingID]
	a.BookingID = event.BookingID
	a.PNR = event.PNR
	a.UserID = event.UserID
	a.TrainNumber = event.TrainNumber
	a.ClassCode = event.ClassCode
	if len(a.Seats) == 0 {
		a.Seats = append([]string(nil), event.Seats...)
	}
	a.RefundAmount = event.RefundAmount
	at := event.Header.PublishedAt
	a.CancelledAt = &at
	a.Status = "Cancelled"
	m.bookings[event.BookingID] = a
	return nil
}

// duplicate must be called with mu held.
func (m *ActivityReadModel) duplicate(eventID string) bool {
	if eventID == "" {
		return false
	}
	if _, ok := m.seen[eventID]; ok {
		return true
	}
	m.seen[eventID] = struct{}{}
	return false
}

func (m *ActivityReadModel) Get(bookingID string) (BookingActivity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.bookings[bookingID]
	return a, ok
}

// All returns activity sorted by booking id, optionally filtered by status.
func (m *ActivityReadModel) All(status string) []BookingActivity {
	m.mu.RLock()
	out := lo.Filter(lo.Values(m.bookings), func(a BookingActivity, _ int) bool {
		return status == "" || a.Status == status
	})
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].BookingID < out[j].BookingID })
	return out
}
