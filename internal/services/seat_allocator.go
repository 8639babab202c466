package services

import (
	"fmt"

	"traintrack/internal/domain/models"
	"traintrack/internal/utils"
)

const (
	coachesPerClass = 5
	seatsPerCoach   = 72
)

var coachPrefixes = map[string]string{
	"SL": "S",
	"3A": "B",
	"2A": "A",
	"1A": "H",
	"CC": "H",
	"EC": "H",
}

// Berth types by seat position modulo 8 for sleeper classes.
var sleeperBerths = [8]string{"Side Upper", "Lower", "Middle", "Upper", "Lower", "Middle", "Upper", "Side Lower"}

// SeatAllocator picks a coach and a run of consecutive seats for a booking.
// It keeps no state besides its random source.
type SeatAllocator struct {
	Random utils.RandomSource
}

func NewSeatAllocator(r utils.RandomSource) SeatAllocator {
	return SeatAllocator{Random: r}
}

func (a SeatAllocator) random() utils.RandomSource {
	if a.Random != nil {
		return a.Random
	}
	return utils.DefaultRandom
}

// Assign returns one seat per passenger. Seats within a call never repeat.
// Counts above a coach's capacity are clamped to seatsPerCoach.
func (a SeatAllocator) Assign(classCode string, passengerCount int, trainNumber string) []models.SeatAssignment {
	if passengerCount <= 0 {
		return nil
	}
	if passengerCount > seatsPerCoach {
		passengerCount = seatsPerCoach
	}

	r := a.random()
	prefix := CoachPrefix(classCode)
	coach := utils.RandomBetween(r, 1, coachesPerClass)
	start := utils.RandomBetween(r, 1, seatsPerCoach-passengerCount+1)

	out := make([]models.SeatAssignment, 0, passengerCount)
	for i := 0; i < passengerCount; i++ {
		seat := start + i
		out = append(out, models.SeatAssignment{
			Seat:  fmt.Sprintf("%s%d-%d", prefix, coach, seat),
			Berth: BerthType(seat, classCode),
		})
	}
	return out
}

// CoachPrefix maps a class code to its coach letter. Unknown classes use "S".
func CoachPrefix(classCode string) string {
	if p, ok := coachPrefixes[classCode]; ok {
		return p
	}
	return "S"
}

// BerthType derives the berth for a seat number. Only sleeper classes have
// berths, everything else is "Seat".
func BerthType(seatNumber int, classCode string) string {
	switch classCode {
	case "SL", "3A", "2A":
		return sleeperBerths[((seatNumber%8)+8)%8]
	default:
		return "Seat"
	}
}
