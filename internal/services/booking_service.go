package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samber/lo"

	"traintrack/internal/domain"
	"traintrack/internal/domain/models"
	"traintrack/internal/events"
	"traintrack/internal/metrics"
	"traintrack/internal/utils"
)

const maxIDAttempts = 10

// Inventory is the seat store the booking flow reserves from.
type Inventory interface {
	Lookup(trainNumber string) (models.TrainRoute, error)
	TryReserve(trainNumber, classCode string, count int) (float64, error)
	Release(trainNumber, classCode string, count int) error
}

// BookingLedger stores booking records.
type BookingLedger interface {
	Insert(b models.Booking) error
	Exists(id string) bool
	PNRExists(pnr string) bool
	FindByID(id string) (models.Booking, error)
	FindByConfirmationCode(pnr string) (models.Booking, error)
	FindByUser(userID string) []models.Booking
	UpdateFunc(id string, fn func(models.Booking) (models.Booking, error)) (before, after models.Booking, err error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

type CreateBookingInput struct {
	UserID      string
	TrainNumber string
	ClassCode   string
	JourneyDate string
	Passengers  []models.Passenger
}

// BookingService runs the booking and cancellation transactions. It holds at
// most one store lock at a time and publishes events only after every lock
// has been released.
type BookingService struct {
	Inventory Inventory
	Ledger    BookingLedger
	Allocator SeatAllocator
	Events    EventPublisher
	Random    utils.RandomSource
}

func NewBookingService(inventory Inventory, ledger BookingLedger, allocator SeatAllocator, publisher EventPublisher, r utils.RandomSource) *BookingService {
	return &BookingService{
		Inventory: inventory,
		Ledger:    ledger,
		Allocator: allocator,
		Events:    publisher,
		Random:    r,
	}
}

func (s *BookingService) random() utils.RandomSource {
	if s.Random != nil {
		return s.Random
	}
	return utils.DefaultRandom
}

func tracer() trace.Tracer {
	return otel.Tracer("traintrack/services")
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func validateCreateBooking(in CreateBookingInput) error {
	if strings.TrimSpace(in.UserID) == "" {
		return domain.ValidationError{Field: "userId", Msg: "user id is required"}
	}
	if strings.TrimSpace(in.TrainNumber) == "" {
		return domain.ValidationError{Field: "trainNumber", Msg: "train number is required"}
	}
	if strings.TrimSpace(in.ClassCode) == "" {
		return domain.ValidationError{Field: "class", Msg: "class is required"}
	}
	if _, err := utils.ParseDate(in.JourneyDate); err != nil {
		return domain.ValidationError{Field: "journeyDate", Msg: "journey date must be YYYY-MM-DD", Err: err}
	}
	if len(in.Passengers) == 0 {
		return domain.ValidationError{Field: "passengers", Msg: "at least one passenger is required"}
	}
	if len(in.Passengers) > domain.MaxPassengersPerBooking {
		return domain.ValidationError{Field: "passengers", Msg: fmt.Sprintf("maximum %d passengers allowed per booking", domain.MaxPassengersPerBooking)}
	}
	for i, p := range in.Passengers {
		field := fmt.Sprintf("passengers[%d]", i)
		switch {
		case strings.TrimSpace(p.Name) == "":
			return domain.ValidationError{Field: field + ".name", Msg: "name is required"}
		case p.Age < 1 || p.Age > 120:
			return domain.ValidationError{Field: field + ".age", Msg: "age must be between 1 and 120"}
		case strings.TrimSpace(p.Gender) == "":
			return domain.ValidationError{Field: field + ".gender", Msg: "gender is required"}
		}
	}
	return nil
}

// CreateBooking reserves seats, assigns them and records a confirmed booking.
// When recording fails the reserved seats are returned to inventory.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (booking models.Booking, err error) {
	ctx, span := tracer().Start(ctx, "BookingService.CreateBooking")
	span.SetAttributes(
		attribute.String("train_number", in.TrainNumber),
		attribute.String("class", in.ClassCode),
		attribute.Int("passengers", len(in.Passengers)),
	)
	defer func() { endSpan(span, err) }()

	in.TrainNumber = strings.TrimSpace(in.TrainNumber)
	in.ClassCode = strings.TrimSpace(in.ClassCode)
	if err := validateCreateBooking(in); err != nil {
		metrics.BookingsRejected.WithLabelValues("validation").Inc()
		return models.Booking{}, err
	}

	train, err := s.Inventory.Lookup(in.TrainNumber)
	if err != nil {
		metrics.BookingsRejected.WithLabelValues("not_found").Inc()
		return models.Booking{}, err
	}

	count := len(in.Passengers)
	price, err := s.Inventory.TryReserve(in.TrainNumber, in.ClassCode, count)
	if err != nil {
		reason := "reserve_failed"
		switch {
		case domain.IsInsufficientAvailability(err):
			reason = "insufficient_availability"
		case domain.IsNotFound(err):
			reason = "not_found"
		}
		metrics.BookingsRejected.WithLabelValues(reason).Inc()
		return models.Booking{}, err
	}

	seats := s.Allocator.Assign(in.ClassCode, count, in.TrainNumber)
	passengers := make([]models.Passenger, count)
	for i, p := range in.Passengers {
		p.Name = strings.TrimSpace(p.Name)
		if i < len(seats) {
			p.AssignedSeat = seats[i].Seat
			p.AssignedBerth = seats[i].Berth
		}
		passengers[i] = p
	}

	booking = models.Booking{
		UserID:        in.UserID,
		Train:         train,
		SelectedClass: models.SelectedClass{Class: in.ClassCode, Price: price},
		JourneyDate:   strings.TrimSpace(in.JourneyDate),
		TotalFare:     utils.ComputeTotalFare(price, count),
		BookingDate:   utils.NowUTC(),
		Status:        domain.BookingConfirmed,
		Passengers:    passengers,
	}

	booking.BookingID, booking.PNR, err = s.generateIdentifiers()
	if err == nil {
		err = s.Ledger.Insert(booking)
	}
	if err != nil {
		return models.Booking{}, s.compensateReservation(ctx, in.TrainNumber, in.ClassCode, count, err)
	}

	metrics.BookingsCreated.WithLabelValues(in.ClassCode).Inc()
	metrics.SeatsReserved.WithLabelValues(in.TrainNumber, in.ClassCode).Add(float64(count))
	utils.LogEvent(ctx, "booking", "create", fmt.Sprintf("booking_id=%s pnr=%s train=%s class=%s seats=%d",
		booking.BookingID, booking.PNR, in.TrainNumber, in.ClassCode, count))

	s.publish(ctx, &events.BookingConfirmed{
		Header:      events.NewEventHeader(),
		BookingID:   booking.BookingID,
		PNR:         booking.PNR,
		UserID:      booking.UserID,
		TrainNumber: in.TrainNumber,
		ClassCode:   in.ClassCode,
		JourneyDate: booking.JourneyDate,
		Seats:       booking.Seats(),
		TotalFare:   booking.TotalFare,
	})

	return booking.Clone(), nil
}

func (s *BookingService) compensateReservation(ctx context.Context, trainNumber, classCode string, count int, cause error) error {
	releaseErr := s.Inventory.Release(trainNumber, classCode, count)
	if releaseErr == nil {
		metrics.SeatsReleased.WithLabelValues(trainNumber, classCode).Add(float64(count))
		metrics.BookingsRejected.WithLabelValues("ledger").Inc()
		utils.LoggerFromContext(ctx).WithError(cause).Warn("booking not recorded, seats returned to inventory")
		return cause
	}

	metrics.InventoryInconsistencies.WithLabelValues("create_booking").Inc()
	inconsistency := domain.InconsistencyError{
		Msg: fmt.Sprintf("could not return %d seats on train %s class %s after failed booking", count, trainNumber, classCode),
		Err: releaseErr,
	}
	utils.LoggerFromContext(ctx).WithError(releaseErr).WithField("cause", cause.Error()).Error(inconsistency.Msg)
	return errors.Join(inconsistency, cause)
}

func (s *BookingService) generateIdentifiers() (string, string, error) {
	r := s.random()
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := fmt.Sprintf("booking_%d", utils.RandomBetween(r, 100000, 999999))
		pnr := fmt.Sprintf("%d-%d", utils.RandomBetween(r, 100, 999), utils.RandomBetween(r, 1000000, 9999999))
		if !s.Ledger.Exists(id) && !s.Ledger.PNRExists(pnr) {
			return id, pnr, nil
		}
	}
	return "", "", domain.ConflictError{Resource: "booking", Msg: fmt.Sprintf("could not generate a unique booking id after %d attempts", maxIDAttempts)}
}

// CancelBooking marks a booking cancelled, returns its seats and reports the
// refund. When the seats cannot be returned the refund is still reported
// along with an InconsistencyError.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID string) (refund float64, err error) {
	ctx, span := tracer().Start(ctx, "BookingService.CancelBooking")
	span.SetAttributes(attribute.String("booking_id", bookingID))
	defer func() { endSpan(span, err) }()

	before, after, err := s.Ledger.UpdateFunc(bookingID, func(b models.Booking) (models.Booking, error) {
		if b.UserID != userID {
			return b, domain.ForbiddenError{Resource: "booking", Msg: "booking belongs to another user"}
		}
		if b.IsCancelled() {
			return b, domain.AlreadyCancelledError{BookingID: b.BookingID}
		}
		b.Status = domain.BookingCancelled
		return b, nil
	})
	if err != nil {
		return 0, err
	}

	refund = utils.ApplyRate(before.TotalFare, domain.RefundRate)
	trainNumber := after.Train.TrainNumber
	classCode := after.ClassCode()
	count := len(after.Passengers)

	metrics.BookingsCancelled.WithLabelValues(classCode).Inc()
	utils.LogEvent(ctx, "booking", "cancel", fmt.Sprintf("booking_id=%s refund=%s", bookingID, utils.FormatMoney(refund)))

	if count > 0 {
		if releaseErr := s.Inventory.Release(trainNumber, classCode, count); releaseErr != nil {
			metrics.InventoryInconsistencies.WithLabelValues("cancel_booking").Inc()
			inconsistency := domain.InconsistencyError{
				Msg: fmt.Sprintf("booking %s cancelled but %d seats on train %s class %s were not returned", bookingID, count, trainNumber, classCode),
				Err: releaseErr,
			}
			utils.LoggerFromContext(ctx).WithError(releaseErr).Error(inconsistency.Msg)
			err = inconsistency
		} else {
			metrics.SeatsReleased.WithLabelValues(trainNumber, classCode).Add(float64(count))
		}
	}

	s.publish(ctx, &events.BookingCancelled{
		Header:       events.NewEventHeader(),
		BookingID:    after.BookingID,
		PNR:          after.PNR,
		UserID:       after.UserID,
		TrainNumber:  trainNumber,
		ClassCode:    classCode,
		Seats:        after.Seats(),
		RefundAmount: refund,
	})

	return refund, err
}

// CalculateRefund is 80% of the fare for cancelled bookings and 0 otherwise.
func CalculateRefund(b models.Booking) float64 {
	if !b.IsCancelled() {
		return 0
	}
	return utils.ApplyRate(b.TotalFare, domain.RefundRate)
}

// PreviewRefund is what cancelling b would return right now.
func PreviewRefund(b models.Booking) float64 {
	if b.IsCancelled() {
		return CalculateRefund(b)
	}
	return utils.ApplyRate(b.TotalFare, domain.RefundRate)
}

func ownedBy(b models.Booking, userID string) error {
	if b.UserID != userID {
		return domain.ForbiddenError{Resource: "booking", Msg: "booking belongs to another user"}
	}
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID string) (models.Booking, error) {
	b, err := s.Ledger.FindByID(bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if err := ownedBy(b, userID); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

func (s *BookingService) GetBookingByPNR(ctx context.Context, pnr, userID string) (models.Booking, error) {
	b, err := s.Ledger.FindByConfirmationCode(strings.TrimSpace(pnr))
	if err != nil {
		return models.Booking{}, err
	}
	if err := ownedBy(b, userID); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// ListUserBookings returns the user's bookings in booking order. An empty
// status returns all of them.
func (s *BookingService) ListUserBookings(ctx context.Context, userID string, status domain.BookingStatus) []models.Booking {
	all := s.Ledger.FindByUser(userID)
	if status == "" {
		return all
	}
	return lo.Filter(all, func(b models.Booking, _ int) bool {
		return strings.EqualFold(string(b.Status), string(status))
	})
}

func (s *BookingService) publish(ctx context.Context, event any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(context.WithoutCancel(ctx), event); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warn("could not publish booking event")
	}
}
