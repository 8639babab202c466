package repositories

import (
	"fmt"
	"strings"
	"sync"

	"traintrack/internal/domain"
	"traintrack/internal/domain/models"
	"traintrack/internal/utils"

	"github.com/samber/lo"
)

type classSlot struct {
	mu    sync.Mutex
	avail models.ClassAvailability
}

type trainEntry struct {
	route   models.TrainRoute // identity only, Availability is nil
	classes []*classSlot
	byCode  map[string]*classSlot
}

// InventoryRepository holds per-class seat counters for every train.
// Entries are never removed once registered, so slot pointers read under the
// map lock stay valid after it is released.
type InventoryRepository struct {
	mu     sync.RWMutex
	trains map[string]*trainEntry
	order  []string
}

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{trains: make(map[string]*trainEntry)}
}

// Register adds a route. Train numbers and class codes within a route must be unique.
func (r *InventoryRepository) Register(route models.TrainRoute) error {
	number := strings.TrimSpace(route.TrainNumber)
	if number == "" {
		return domain.ValidationError{Field: "trainNumber", Msg: "train number is required"}
	}

	entry := &trainEntry{byCode: make(map[string]*classSlot, len(route.Availability))}
	entry.route = route.Clone()
	entry.route.TrainNumber = number
	entry.route.Availability = nil
	for _, a := range route.Availability {
		if a.ClassCode == "" {
			return domain.ValidationError{Field: "class", Msg: fmt.Sprintf("train %s has a class without code", number)}
		}
		if _, dup := entry.byCode[a.ClassCode]; dup {
			return domain.ValidationError{Field: "class", Msg: fmt.Sprintf("train %s lists class %s twice", number, a.ClassCode)}
		}
		if a.TotalSeats < 0 || a.AvailableSeats > a.TotalSeats {
			return domain.ValidationError{Field: "availableSeats", Msg: fmt.Sprintf("train %s class %s exceeds total seats", number, a.ClassCode)}
		}
		slot := &classSlot{avail: a}
		entry.classes = append(entry.classes, slot)
		entry.byCode[a.ClassCode] = slot
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.trains[number]; exists {
		return domain.ConflictError{Resource: "train", Msg: fmt.Sprintf("train %s already registered", number)}
	}
	r.trains[number] = entry
	r.order = append(r.order, number)
	return nil
}

func (r *InventoryRepository) entry(trainNumber string) (*trainEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.trains[trainNumber]
	return e, ok
}

func (r *InventoryRepository) slot(trainNumber, classCode string) (*classSlot, error) {
	e, ok := r.entry(trainNumber)
	if !ok {
		return nil, domain.NotFoundError{Resource: "train", ID: trainNumber}
	}
	s, ok := e.byCode[classCode]
	if !ok {
		return nil, domain.NotFoundError{Resource: "class", ID: trainNumber + "/" + classCode}
	}
	return s, nil
}

// TryReserve checks availability and decrements it in one critical section.
// It returns the per-passenger price captured under the same lock.
func (r *InventoryRepository) TryReserve(trainNumber, classCode string, count int) (float64, error) {
	if count <= 0 {
		return 0, domain.ValidationError{Field: "count", Msg: "seat count must be positive"}
	}
	s, err := r.slot(trainNumber, classCode)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.avail.AvailableSeats < count {
		return 0, domain.InsufficientAvailabilityError{
			TrainNumber: trainNumber,
			ClassCode:   classCode,
			Requested:   count,
			Available:   s.avail.AvailableSeats,
		}
	}
	s.avail.AvailableSeats -= count
	return s.avail.Price, nil
}

// Release returns seats to a class. Releasing beyond the class capacity is
// refused and leaves the counter untouched.
func (r *InventoryRepository) Release(trainNumber, classCode string, count int) error {
	if count <= 0 {
		return domain.ValidationError{Field: "count", Msg: "seat count must be positive"}
	}
	s, err := r.slot(trainNumber, classCode)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.avail.AvailableSeats+count > s.avail.TotalSeats {
		return domain.InconsistencyError{Msg: fmt.Sprintf(
			"release of %d seats on train %s class %s exceeds capacity (%d/%d)",
			count, trainNumber, classCode, s.avail.AvailableSeats, s.avail.TotalSeats)}
	}
	s.avail.AvailableSeats += count
	return nil
}

func (e *trainEntry) snapshot() models.TrainRoute {
	out := e.route
	out.Availability = make([]models.ClassAvailability, 0, len(e.classes))
	for _, s := range e.classes {
		s.mu.Lock()
		a := s.avail
		s.mu.Unlock()
		out.Availability = append(out.Availability, a)
	}
	return out
}

// Lookup returns a copy of the train with its current counters.
func (r *InventoryRepository) Lookup(trainNumber string) (models.TrainRoute, error) {
	e, ok := r.entry(strings.TrimSpace(trainNumber))
	if !ok {
		return models.TrainRoute{}, domain.NotFoundError{Resource: "train", ID: trainNumber}
	}
	return e.snapshot(), nil
}

func (r *InventoryRepository) entries() []*trainEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Map(r.order, func(number string, _ int) *trainEntry {
		return r.trains[number]
	})
}

// List returns every route in registration order.
func (r *InventoryRepository) List() []models.TrainRoute {
	return lo.Map(r.entries(), func(e *trainEntry, _ int) models.TrainRoute {
		return e.snapshot()
	})
}

// SearchByRoute returns routes running from one station to another, in
// registration order.
func (r *InventoryRepository) SearchByRoute(from, to string) []models.TrainRoute {
	matched := lo.Filter(r.entries(), func(e *trainEntry, _ int) bool {
		return utils.MatchStation(e.route.FromStation, from) && utils.MatchStation(e.route.ToStation, to)
	})
	return lo.Map(matched, func(e *trainEntry, _ int) models.TrainRoute {
		return e.snapshot()
	})
}
