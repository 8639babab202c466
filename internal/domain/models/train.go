package models

import (
	"encoding/json"
	"strconv"
)

// ClassAvailability is the seat counter and fare of one class on a train.
type ClassAvailability struct {
	ClassCode      string  `json:"class" yaml:"class"`
	TotalSeats     int     `json:"totalSeats" yaml:"totalSeats"`
	AvailableSeats int     `json:"availableSeats" yaml:"availableSeats"`
	Price          float64 `json:"price" yaml:"price"`
}

// Status renders "AVL n" for open seats and "WL n" once the class is full
// or waitlisted.
func (a ClassAvailability) Status() string {
	switch {
	case a.AvailableSeats > 0:
		return "AVL " + strconv.Itoa(a.AvailableSeats)
	case a.AvailableSeats == 0:
		return "WL 0"
	default:
		return "WL " + strconv.Itoa(-a.AvailableSeats)
	}
}

// MarshalJSON adds the derived status string next to the counters.
func (a ClassAvailability) MarshalJSON() ([]byte, error) {
	type plain ClassAvailability
	return json.Marshal(struct {
		plain
		Status string `json:"status"`
	}{plain(a), a.Status()})
}

// TrainRoute is a train running between two stations with per-class inventory.
type TrainRoute struct {
	TrainNumber   string              `json:"trainNumber" yaml:"trainNumber"`
	TrainName     string              `json:"trainName" yaml:"trainName"`
	FromStation   string              `json:"from" yaml:"from"`
	ToStation     string              `json:"to" yaml:"to"`
	DepartureTime string              `json:"departureTime" yaml:"departureTime"`
	ArrivalTime   string              `json:"arrivalTime" yaml:"arrivalTime"`
	Duration      string              `json:"duration" yaml:"duration"`
	Availability  []ClassAvailability `json:"availability" yaml:"availability"`
}

// Class returns the availability entry for classCode.
func (t TrainRoute) Class(classCode string) (ClassAvailability, bool) {
	for _, a := range t.Availability {
		if a.ClassCode == classCode {
			return a, true
		}
	}
	return ClassAvailability{}, false
}

// Clone returns a copy that shares no memory with t.
func (t TrainRoute) Clone() TrainRoute {
	out := t
	if t.Availability != nil {
		out.Availability = make([]ClassAvailability, len(t.Availability))
		copy(out.Availability, t.Availability)
	}
	return out
}
