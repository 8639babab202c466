package models

import (
	"time"

	"traintrack/internal/domain"
)

// Passenger is a traveller on a booking. AssignedSeat and AssignedBerth stay
// empty until seat allocation runs and never change afterwards.
type Passenger struct {
	Name            string `json:"name"`
	Age             int    `json:"age"`
	Gender          string `json:"gender"`
	BerthPreference string `json:"berth"`
	AssignedSeat    string `json:"assignedSeat,omitempty"`
	AssignedBerth   string `json:"assignedBerth,omitempty"`
}

// SelectedClass is the class and per-passenger fare captured at booking time.
type SelectedClass struct {
	Class string  `json:"class"`
	Price float64 `json:"price"`
}

// Booking is a confirmed or cancelled reservation. Train is a snapshot taken
// when the booking was made.
type Booking struct {
	BookingID     string               `json:"bookingId"`
	PNR           string               `json:"pnr"`
	UserID        string               `json:"userId"`
	Train         TrainRoute           `json:"train"`
	SelectedClass SelectedClass        `json:"selectedClass"`
	JourneyDate   string               `json:"journeyDate"`
	TotalFare     float64              `json:"totalFare"`
	BookingDate   time.Time            `json:"bookingDate"`
	Status        domain.BookingStatus `json:"status"`
	Passengers    []Passenger          `json:"passengers"`
}

func (b Booking) ClassCode() string { return b.SelectedClass.Class }

func (b Booking) IsCancelled() bool { return b.Status == domain.BookingCancelled }

// Seats lists the assigned seats in passenger order.
func (b Booking) Seats() []string {
	out := make([]string, 0, len(b.Passengers))
	for _, p := range b.Passengers {
		out = append(out, p.AssignedSeat)
	}
	return out
}

// Clone returns a deep copy so callers never alias ledger-owned memory.
func (b Booking) Clone() Booking {
	out := b
	out.Train = b.Train.Clone()
	if b.Passengers != nil {
		out.Passengers = make([]Passenger, len(b.Passengers))
		copy(out.Passengers, b.Passengers)
	}
	return out
}

// SeatAssignment is one allocated seat and its berth type.
type SeatAssignment struct {
	Seat  string `json:"seat"`
	Berth string `json:"berth"`
}
