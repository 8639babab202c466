package domain

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCancelled BookingStatus = "Cancelled"
)

// MaxPassengersPerBooking caps a single booking request.
const MaxPassengersPerBooking = 6

// RefundRate is the share of the total fare returned on cancellation.
const RefundRate = 0.8

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID string `json:"userId"`
	Token  string `json:"-"`
}
