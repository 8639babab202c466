package repositories

import (
	"fmt"
	"strings"
	"sync"

	"traintrack/internal/domain"
	"traintrack/internal/domain/models"

	"github.com/samber/lo"
)

type bookingRecord struct {
	mu      sync.Mutex
	booking models.Booking
}

func (rec *bookingRecord) snapshot() models.Booking {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.booking.Clone()
}

// BookingRepository is the in-memory booking ledger. The index maps share one
// RWMutex; every record carries its own mutex for read-check-write updates.
type BookingRepository struct {
	mu     sync.RWMutex
	byID   map[string]*bookingRecord
	byPNR  map[string]string
	byUser map[string][]string
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		byID:   make(map[string]*bookingRecord),
		byPNR:  make(map[string]string),
		byUser: make(map[string][]string),
	}
}

// Insert stores a new booking and indexes it by user and PNR.
func (r *BookingRepository) Insert(b models.Booking) error {
	if strings.TrimSpace(b.BookingID) == "" {
		return domain.ValidationError{Field: "bookingId", Msg: "booking id is required"}
	}
	if strings.TrimSpace(b.PNR) == "" {
		return domain.ValidationError{Field: "pnr", Msg: "pnr is required"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[b.BookingID]; exists {
		return domain.ConflictError{Resource: "booking", Msg: fmt.Sprintf("id %s already exists", b.BookingID)}
	}
	if _, exists := r.byPNR[b.PNR]; exists {
		return domain.ConflictError{Resource: "booking", Msg: fmt.Sprintf("pnr %s already exists", b.PNR)}
	}
	r.byID[b.BookingID] = &bookingRecord{booking: b.Clone()}
	r.byPNR[b.PNR] = b.BookingID
	r.byUser[b.UserID] = append(r.byUser[b.UserID], b.BookingID)
	return nil
}

func (r *BookingRepository) record(id string) (*bookingRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	return rec, ok
}

// Exists reports whether a booking id is already taken.
func (r *BookingRepository) Exists(id string) bool {
	_, ok := r.record(id)
	return ok
}

// PNRExists reports whether a confirmation code is already taken.
func (r *BookingRepository) PNRExists(pnr string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byPNR[pnr]
	return ok
}

func (r *BookingRepository) FindByID(id string) (models.Booking, error) {
	rec, ok := r.record(id)
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", ID: id}
	}
	return rec.snapshot(), nil
}

func (r *BookingRepository) FindByConfirmationCode(pnr string) (models.Booking, error) {
	r.mu.RLock()
	id, ok := r.byPNR[pnr]
	r.mu.RUnlock()
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", ID: pnr}
	}
	return r.FindByID(id)
}

// FindByUser returns the user's bookings in insertion order.
func (r *BookingRepository) FindByUser(userID string) []models.Booking {
	r.mu.RLock()
	recs := lo.FilterMap(r.byUser[userID], func(id string, _ int) (*bookingRecord, bool) {
		rec, ok := r.byID[id]
		return rec, ok
	})
	r.mu.RUnlock()

	return lo.Map(recs, func(rec *bookingRecord, _ int) models.Booking {
		return rec.snapshot()
	})
}

// Len returns the number of stored bookings.
func (r *BookingRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Update replaces a stored booking. Owner and PNR cannot change.
func (r *BookingRepository) Update(b models.Booking) error {
	_, _, err := r.UpdateFunc(b.BookingID, func(models.Booking) (models.Booking, error) {
		return b, nil
	})
	return err
}

// UpdateFunc runs fn on the current booking under the record lock and stores
// its result. A non-nil error from fn leaves the record untouched.
func (r *BookingRepository) UpdateFunc(id string, fn func(models.Booking) (models.Booking, error)) (before, after models.Booking, err error) {
	rec, ok := r.record(id)
	if !ok {
		return models.Booking{}, models.Booking{}, domain.NotFoundError{Resource: "booking", ID: id}
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	before = rec.booking.Clone()
	updated, err := fn(rec.booking.Clone())
	if err != nil {
		return before, before, err
	}
	if updated.BookingID != before.BookingID || updated.UserID != before.UserID || updated.PNR != before.PNR {
		return before, before, domain.ValidationError{Field: "booking", Msg: "booking id, owner and pnr are immutable"}
	}
	rec.booking = updated.Clone()
	return before, rec.booking.Clone(), nil
}
