package repositories

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"traintrack/internal/domain"
	"traintrack/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBooking(id, pnr, user string) models.Booking {
	return models.Booking{
		BookingID:     id,
		PNR:           pnr,
		UserID:        user,
		Train:         sampleRoute("12951"),
		SelectedClass: models.SelectedClass{Class: "3A", Price: 2500},
		JourneyDate:   "2026-11-01",
		TotalFare:     2500,
		Status:        domain.BookingConfirmed,
		Passengers:    []models.Passenger{{Name: "Asha", Age: 30, Gender: "F", AssignedSeat: "B1-1", AssignedBerth: "Lower"}},
	}
}

func TestBookingInsertAndFind(t *testing.T) {
	repo := NewBookingRepository()
	require.NoError(t, repo.Insert(sampleBooking("booking_000001", "123-4567890", "user_000001")))
	require.NoError(t, repo.Insert(sampleBooking("booking_000002", "123-4567891", "user_000001")))

	b, err := repo.FindByID("booking_000001")
	require.NoError(t, err)
	assert.Equal(t, "123-4567890", b.PNR)

	b, err = repo.FindByConfirmationCode("123-4567891")
	require.NoError(t, err)
	assert.Equal(t, "booking_000002", b.BookingID)

	list := repo.FindByUser("user_000001")
	require.Len(t, list, 2)
	assert.Equal(t, "booking_000001", list[0].BookingID)
	assert.Empty(t, repo.FindByUser("user_999999"))

	_, err = repo.FindByID("booking_999999")
	assert.True(t, domain.IsNotFound(err))
	_, err = repo.FindByConfirmationCode("000-0000000")
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, repo.Exists("booking_000001"))
	assert.True(t, repo.PNRExists("123-4567890"))
	assert.Equal(t, 2, repo.Len())
}

func TestBookingInsertRejectsDuplicates(t *testing.T) {
	repo := NewBookingRepository()
	require.NoError(t, repo.Insert(sampleBooking("booking_000001", "123-4567890", "user_000001")))

	assert.True(t, domain.IsConflict(repo.Insert(sampleBooking("booking_000001", "999-9999999", "user_000001"))))
	assert.True(t, domain.IsConflict(repo.Insert(sampleBooking("booking_000003", "123-4567890", "user_000001"))))
	assert.True(t, domain.IsValidation(repo.Insert(sampleBooking("", "1", "u"))))
}

func TestBookingReadersGetCopies(t *testing.T) {
	repo := NewBookingRepository()
	in := sampleBooking("booking_000001", "123-4567890", "user_000001")
	require.NoError(t, repo.Insert(in))
	in.Passengers[0].Name = "changed"

	b, err := repo.FindByID("booking_000001")
	require.NoError(t, err)
	assert.Equal(t, "Asha", b.Passengers[0].Name)

	b.Passengers[0].AssignedSeat = "X"
	again, _ := repo.FindByID("booking_000001")
	assert.Equal(t, "B1-1", again.Passengers[0].AssignedSeat)
}

func TestBookingUpdateFunc(t *testing.T) {
	repo := NewBookingRepository()
	require.NoError(t, repo.Insert(sampleBooking("booking_000001", "123-4567890", "user_000001")))

	stop := errors.New("stop")
	_, _, err := repo.UpdateFunc("booking_000001", func(b models.Booking) (models.Booking, error) {
		b.Status = domain.BookingCancelled
		return b, stop
	})
	require.ErrorIs(t, err, stop)
	b, _ := repo.FindByID("booking_000001")
	assert.Equal(t, domain.BookingConfirmed, b.Status)

	before, after, err := repo.UpdateFunc("booking_000001", func(b models.Booking) (models.Booking, error) {
		b.Status = domain.BookingCancelled
		return b, nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, before.Status)
	assert.Equal(t, domain.BookingCancelled, after.Status)

	_, _, err = repo.UpdateFunc("booking_000001", func(b models.Booking) (models.Booking, error) {
		b.UserID = "user_000002"
		return b, nil
	})
	assert.True(t, domain.IsValidation(err))

	_, _, err = repo.UpdateFunc("missing", func(b models.Booking) (models.Booking, error) { return b, nil })
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, domain.IsNotFound(repo.Update(sampleBooking("missing", "1", "u"))))
}

func TestBookingUpdateFuncSerializesSameRecord(t *testing.T) {
	repo := NewBookingRepository()
	require.NoError(t, repo.Insert(sampleBooking("booking_000001", "123-4567890", "user_000001")))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := repo.UpdateFunc("booking_000001", func(b models.Booking) (models.Booking, error) {
				if b.IsCancelled() {
					return b, domain.AlreadyCancelledError{BookingID: b.BookingID}
				}
				b.Status = domain.BookingCancelled
				return b, nil
			})
			if err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins.Load())
}
