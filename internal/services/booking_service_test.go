package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traintrack/internal/domain"
	"traintrack/internal/domain/models"
	"traintrack/internal/events"
	"traintrack/internal/repositories"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []any
}

func (p *recordingPublisher) Publish(ctx context.Context, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) all() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.events...)
}

type failingInsertLedger struct {
	*repositories.BookingRepository
}

func (failingInsertLedger) Insert(models.Booking) error {
	return errors.New("ledger unavailable")
}

type failingReleaseInventory struct {
	*repositories.InventoryRepository
	releases atomic.Int32
}

func (f *failingReleaseInventory) Release(trainNumber, classCode string, count int) error {
	f.releases.Add(1)
	return errors.New("release refused")
}

func rajdhani(avail3A int) models.TrainRoute {
	return models.TrainRoute{
		TrainNumber:   "12951",
		TrainName:     "Mumbai Rajdhani",
		FromStation:   "New Delhi (NDLS)",
		ToStation:     "Mumbai (CST)",
		DepartureTime: "17:00",
		ArrivalTime:   "08:35",
		Duration:      "15h 35m",
		Availability: []models.ClassAvailability{
			{ClassCode: "3A", TotalSeats: 64, AvailableSeats: avail3A, Price: 2500},
			{ClassCode: "1A", TotalSeats: 24, AvailableSeats: 0, Price: 4800},
		},
	}
}

func passengers(n int) []models.Passenger {
	out := make([]models.Passenger, n)
	for i := range out {
		out[i] = models.Passenger{Name: fmt.Sprintf("Passenger %d", i+1), Age: 30 + i, Gender: "F", BerthPreference: "Lower"}
	}
	return out
}

func bookingInput(n int) CreateBookingInput {
	return CreateBookingInput{
		UserID:      "user_000001",
		TrainNumber: "12951",
		ClassCode:   "3A",
		JourneyDate: "2026-11-01",
		Passengers:  passengers(n),
	}
}

type fixture struct {
	inventory *repositories.InventoryRepository
	ledger    *repositories.BookingRepository
	publisher *recordingPublisher
	svc       *BookingService
}

func newFixture(t *testing.T, avail3A int) fixture {
	t.Helper()
	inv := repositories.NewInventoryRepository()
	require.NoError(t, inv.Register(rajdhani(avail3A)))
	ledger := repositories.NewBookingRepository()
	pub := &recordingPublisher{}
	return fixture{
		inventory: inv,
		ledger:    ledger,
		publisher: pub,
		svc:       NewBookingService(inv, ledger, NewSeatAllocator(nil), pub, nil),
	}
}

func (f fixture) available(t *testing.T, class string) int {
	t.Helper()
	route, err := f.inventory.Lookup("12951")
	require.NoError(t, err)
	a, ok := route.Class(class)
	require.True(t, ok)
	return a.AvailableSeats
}

func TestBookAndCancelScenario(t *testing.T) {
	f := newFixture(t, 45)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, bookingInput(2))
	require.NoError(t, err)
	assert.Equal(t, 43, f.available(t, "3A"))
	assert.Equal(t, 5000.0, b.TotalFare)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Regexp(t, `^booking_\d{6}$`, b.BookingID)
	assert.Regexp(t, `^\d{3}-\d{7}$`, b.PNR)
	assert.Equal(t, 2500.0, b.SelectedClass.Price)
	require.Len(t, b.Passengers, 2)
	for _, p := range b.Passengers {
		assert.Regexp(t, `^B[1-5]-\d+$`, p.AssignedSeat)
		assert.NotEmpty(t, p.AssignedBerth)
	}
	assert.NotEqual(t, b.Passengers[0].AssignedSeat, b.Passengers[1].AssignedSeat)

	stored, err := f.ledger.FindByID(b.BookingID)
	require.NoError(t, err)
	assert.Equal(t, b.PNR, stored.PNR)

	refund, err := f.svc.CancelBooking(ctx, b.BookingID, "user_000001")
	require.NoError(t, err)
	assert.Equal(t, 4000.0, refund)
	assert.Equal(t, 45, f.available(t, "3A"))

	stored, err = f.ledger.FindByID(b.BookingID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, stored.Status)
	assert.Equal(t, 4000.0, CalculateRefund(stored))

	evs := f.publisher.all()
	require.Len(t, evs, 2)
	confirmed, ok := evs[0].(*events.BookingConfirmed)
	require.True(t, ok)
	assert.Equal(t, b.BookingID, confirmed.BookingID)
	cancelled, ok := evs[1].(*events.BookingCancelled)
	require.True(t, ok)
	assert.Equal(t, 4000.0, cancelled.RefundAmount)
}

func TestCreateBookingInsufficientAvailability(t *testing.T) {
	f := newFixture(t, 45)
	in := bookingInput(1)
	in.ClassCode = "1A"

	_, err := f.svc.CreateBooking(context.Background(), in)
	assert.True(t, domain.IsInsufficientAvailability(err))
	assert.Equal(t, 0, f.available(t, "1A"))
	assert.Equal(t, 0, f.ledger.Len())
	assert.Empty(t, f.publisher.all())
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t, 45)
	ctx := context.Background()

	cases := map[string]func(*CreateBookingInput){
		"seven passengers": func(in *CreateBookingInput) { in.Passengers = passengers(7) },
		"no passengers":    func(in *CreateBookingInput) { in.Passengers = nil },
		"missing user":     func(in *CreateBookingInput) { in.UserID = "" },
		"bad date":         func(in *CreateBookingInput) { in.JourneyDate = "01/11/2026" },
		"age zero":         func(in *CreateBookingInput) { in.Passengers[0].Age = 0 },
		"age too high":     func(in *CreateBookingInput) { in.Passengers[0].Age = 121 },
		"missing name":     func(in *CreateBookingInput) { in.Passengers[0].Name = " " },
		"missing gender":   func(in *CreateBookingInput) { in.Passengers[0].Gender = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := bookingInput(2)
			mutate(&in)
			_, err := f.svc.CreateBooking(ctx, in)
			assert.True(t, domain.IsValidation(err), "got %v", err)
			assert.Equal(t, 45, f.available(t, "3A"))
		})
	}
	assert.Equal(t, 0, f.ledger.Len())
}

func TestCreateBookingUnknownTrainOrClass(t *testing.T) {
	f := newFixture(t, 45)
	in := bookingInput(1)
	in.TrainNumber = "00000"
	_, err := f.svc.CreateBooking(context.Background(), in)
	assert.True(t, domain.IsNotFound(err))

	in = bookingInput(1)
	in.ClassCode = "EC"
	_, err = f.svc.CreateBooking(context.Background(), in)
	assert.True(t, domain.IsNotFound(err))
}

func TestCreateBookingReleasesSeatsWhenLedgerFails(t *testing.T) {
	f := newFixture(t, 45)
	svc := NewBookingService(f.inventory, failingInsertLedger{f.ledger}, NewSeatAllocator(nil), f.publisher, nil)

	_, err := svc.CreateBooking(context.Background(), bookingInput(3))
	require.Error(t, err)
	assert.False(t, domain.IsInconsistency(err))
	assert.Equal(t, 45, f.available(t, "3A"))
	assert.Empty(t, f.publisher.all())
}

func TestCreateBookingReleasesSeatsWhenIDsCollide(t *testing.T) {
	f := newFixture(t, 45)
	r := newSequenceRandom(0)
	require.NoError(t, f.ledger.Insert(models.Booking{BookingID: "booking_100000", PNR: "100-1000000", UserID: "user_000009"}))
	svc := NewBookingService(f.inventory, f.ledger, NewSeatAllocator(r), nil, r)

	_, err := svc.CreateBooking(context.Background(), bookingInput(2))
	assert.True(t, domain.IsConflict(err))
	assert.Equal(t, 45, f.available(t, "3A"))
	assert.Equal(t, 1, f.ledger.Len())
}

func TestCreateBookingReportsInconsistencyWhenCompensationFails(t *testing.T) {
	f := newFixture(t, 45)
	inv := &failingReleaseInventory{InventoryRepository: f.inventory}
	svc := NewBookingService(inv, failingInsertLedger{f.ledger}, NewSeatAllocator(nil), nil, nil)

	_, err := svc.CreateBooking(context.Background(), bookingInput(2))
	assert.True(t, domain.IsInconsistency(err))
	assert.Contains(t, err.Error(), "ledger unavailable")
	assert.EqualValues(t, 1, inv.releases.Load())
	assert.Equal(t, 43, f.available(t, "3A"))
}

func TestCancelBookingTwice(t *testing.T) {
	f := newFixture(t, 45)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, bookingInput(2))
	require.NoError(t, err)

	_, err = f.svc.CancelBooking(ctx, b.BookingID, "user_000001")
	require.NoError(t, err)
	_, err = f.svc.CancelBooking(ctx, b.BookingID, "user_000001")
	assert.True(t, domain.IsAlreadyCancelled(err))
	assert.Equal(t, 45, f.available(t, "3A"))
}

func TestCancelBookingConcurrentReleasesOnce(t *testing.T) {
	f := newFixture(t, 45)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, bookingInput(4))
	require.NoError(t, err)

	var ok, already atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CancelBooking(ctx, b.BookingID, "user_000001")
			switch {
			case err == nil:
				ok.Add(1)
			case domain.IsAlreadyCancelled(err):
				already.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, 15, already.Load())
	assert.Equal(t, 45, f.available(t, "3A"))
}

func TestCancelBookingOwnershipAndMissing(t *testing.T) {
	f := newFixture(t, 45)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, bookingInput(1))
	require.NoError(t, err)

	_, err = f.svc.CancelBooking(ctx, b.BookingID, "user_000002")
	assert.True(t, domain.IsForbidden(err))
	assert.Equal(t, 44, f.available(t, "3A"))

	_, err = f.svc.CancelBooking(ctx, "booking_000000", "user_000001")
	assert.True(t, domain.IsNotFound(err))
}

func TestCancelBookingSurfacesInconsistency(t *testing.T) {
	f := newFixture(t, 45)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, bookingInput(2))
	require.NoError(t, err)

	inv := &failingReleaseInventory{InventoryRepository: f.inventory}
	svc := NewBookingService(inv, f.ledger, NewSeatAllocator(nil), nil, nil)
	refund, err := svc.CancelBooking(ctx, b.BookingID, "user_000001")
	assert.True(t, domain.IsInconsistency(err))
	assert.Equal(t, 4000.0, refund)

	stored, _ := f.ledger.FindByID(b.BookingID)
	assert.Equal(t, domain.BookingCancelled, stored.Status)
	assert.Equal(t, 43, f.available(t, "3A"))
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	const seats, workers = 8, 40
	f := newFixture(t, seats)
	ctx := context.Background()

	var ok, refused atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := bookingInput(1)
			in.UserID = fmt.Sprintf("user_%06d", i)
			_, err := f.svc.CreateBooking(ctx, in)
			switch {
			case err == nil:
				ok.Add(1)
			case domain.IsInsufficientAvailability(err):
				refused.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, seats, ok.Load())
	assert.EqualValues(t, workers-seats, refused.Load())
	assert.Equal(t, 0, f.available(t, "3A"))
	assert.Equal(t, seats, f.ledger.Len())
}

func TestInventoryConservation(t *testing.T) {
	f := newFixture(t, 45)
	ctx := context.Background()

	var live []models.Booking
	for i := 1; i <= 4; i++ {
		b, err := f.svc.CreateBooking(ctx, bookingInput(i))
		require.NoError(t, err)
		live = append(live, b)
	}
	_, err := f.svc.CancelBooking(ctx, live[1].BookingID, "user_000001")
	require.NoError(t, err)

	held := 0
	for _, b := range f.svc.ListUserBookings(ctx, "user_000001", domain.BookingConfirmed) {
		held += len(b.Passengers)
	}
	assert.Equal(t, 45, f.available(t, "3A")+held)
	assert.Len(t, f.svc.ListUserBookings(ctx, "user_000001", ""), 4)
	assert.Len(t, f.svc.ListUserBookings(ctx, "user_000001", domain.BookingCancelled), 1)
}

func TestGetBookingChecksOwner(t *testing.T) {
	f := newFixture(t, 45)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, bookingInput(1))
	require.NoError(t, err)

	got, err := f.svc.GetBookingByPNR(ctx, b.PNR, "user_000001")
	require.NoError(t, err)
	assert.Equal(t, b.BookingID, got.BookingID)

	_, err = f.svc.GetBooking(ctx, b.BookingID, "user_000002")
	assert.True(t, domain.IsForbidden(err))
	_, err = f.svc.GetBookingByPNR(ctx, "000-0000000", "user_000001")
	assert.True(t, domain.IsNotFound(err))
}

func TestCalculateRefund(t *testing.T) {
	b := models.Booking{TotalFare: 7200, Status: domain.BookingConfirmed}
	assert.Equal(t, 0.0, CalculateRefund(b))
	assert.Equal(t, 5760.0, PreviewRefund(b))
	b.Status = domain.BookingCancelled
	assert.Equal(t, 5760.0, CalculateRefund(b))
	assert.Equal(t, 5760.0, PreviewRefund(b))
}

func TestBookingJSONRoundTrip(t *testing.T) {
	f := newFixture(t, 45)
	b, err := f.svc.CreateBooking(context.Background(), bookingInput(2))
	require.NoError(t, err)

	raw, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"status":"AVL 45"`)
	assert.Contains(t, string(raw), `"selectedClass":{"class":"3A","price":2500}`)

	var decoded models.Booking
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, b, decoded)
}
