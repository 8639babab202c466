package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"traintrack/internal/domain"
	"traintrack/internal/domain/models"
	"traintrack/internal/http/middleware"
	"traintrack/internal/services"
)

type passengerRequest struct {
	Name   Stringish `json:"name"`
	Age    Stringish `json:"age"`
	Gender Stringish `json:"gender"`
	Berth  Stringish `json:"berth"`
}

type trainRef struct {
	TrainNumber Stringish `json:"trainNumber"`
}

type classRef struct {
	Class Stringish `json:"class"`
}

// createBookingRequest accepts the flat form and the nested train/selectedClass form.
type createBookingRequest struct {
	TrainNumber   Stringish          `json:"trainNumber"`
	Train         *trainRef          `json:"train"`
	Class         Stringish          `json:"class"`
	SelectedClass *classRef          `json:"selectedClass"`
	JourneyDate   Stringish          `json:"journeyDate"`
	Passengers    []passengerRequest `json:"passengers"`
}

func (r createBookingRequest) trainNumber() string {
	if n := r.TrainNumber.String(); n != "" {
		return n
	}
	if r.Train != nil {
		return r.Train.TrainNumber.String()
	}
	return ""
}

func (r createBookingRequest) classCode() string {
	if cl := r.Class.String(); cl != "" {
		return cl
	}
	if r.SelectedClass != nil {
		return r.SelectedClass.Class.String()
	}
	return ""
}

// POST /api/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	booking, err := h.Bookings.CreateBooking(c.Request.Context(), services.CreateBookingInput{
		UserID:      middleware.RequestContext(c).UserID,
		TrainNumber: req.trainNumber(),
		ClassCode:   req.classCode(),
		JourneyDate: req.JourneyDate.String(),
		Passengers: lo.Map(req.Passengers, func(p passengerRequest, _ int) models.Passenger {
			return models.Passenger{
				Name:            p.Name.String(),
				Age:             p.Age.Int(),
				Gender:          p.Gender.String(),
				BerthPreference: p.Berth.String(),
			}
		}),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondMessage(c, http.StatusCreated, "Booking confirmed successfully", booking)
}

// GET /api/bookings?status=
func (h *Handler) ListBookings(c *gin.Context) {
	status := domain.BookingStatus(c.Query("status"))
	bookings := h.Bookings.ListUserBookings(c.Request.Context(), middleware.RequestContext(c).UserID, status)
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  len(bookings),
		"data":   bookings,
	})
}

// GET /api/bookings/:bookingId
func (h *Handler) GetBooking(c *gin.Context) {
	booking, err := h.Bookings.GetBooking(c.Request.Context(), c.Param("bookingId"), middleware.RequestContext(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondSuccess(c, http.StatusOK, booking)
}

// GET /api/bookings/pnr/:pnr
func (h *Handler) GetBookingByPNR(c *gin.Context) {
	booking, err := h.Bookings.GetBookingByPNR(c.Request.Context(), c.Param("pnr"), middleware.RequestContext(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondSuccess(c, http.StatusOK, booking)
}

// GET /api/bookings/:bookingId/refund
func (h *Handler) GetRefund(c *gin.Context) {
	booking, err := h.Bookings.GetBooking(c.Request.Context(), c.Param("bookingId"), middleware.RequestContext(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondSuccess(c, http.StatusOK, gin.H{
		"bookingId":    booking.BookingID,
		"pnr":          booking.PNR,
		"status":       booking.Status,
		"totalFare":    booking.TotalFare,
		"refundAmount": services.PreviewRefund(booking),
	})
}

// DELETE /api/bookings/:bookingId
func (h *Handler) CancelBooking(c *gin.Context) {
	bookingID := c.Param("bookingId")
	refund, err := h.Bookings.CancelBooking(c.Request.Context(), bookingID, middleware.RequestContext(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	booking, err := h.Bookings.GetBooking(c.Request.Context(), bookingID, middleware.RequestContext(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondMessage(c, http.StatusOK, "Booking cancelled successfully", gin.H{
		"bookingId":    booking.BookingID,
		"pnr":          booking.PNR,
		"status":       booking.Status,
		"refundAmount": refund,
	})
}

// GET /api/bookings/:bookingId/e-ticket
func (h *Handler) GetETicket(c *gin.Context) {
	h.renderDocument(c, h.Docs.GenerateETicket)
}

// GET /api/bookings/:bookingId/invoice
func (h *Handler) GetInvoice(c *gin.Context) {
	h.renderDocument(c, h.Docs.GenerateInvoice)
}

type documentRenderer func(ctx context.Context, b models.Booking) ([]byte, string, error)

func (h *Handler) renderDocument(c *gin.Context, render documentRenderer) {
	booking, err := h.Bookings.GetBooking(c.Request.Context(), c.Param("bookingId"), middleware.RequestContext(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	pdfBytes, filename, err := render(c.Request.Context(), booking)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
