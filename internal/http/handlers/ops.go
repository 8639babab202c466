package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/ops/bookings?status=
func (h *Handler) OpsBookings(c *gin.Context) {
	activity := h.Activity.All(c.Query("status"))
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  len(activity),
		"data":   activity,
	})
}

// GET /api/ops/bookings/:bookingId
func (h *Handler) OpsBooking(c *gin.Context) {
	a, ok := h.Activity.Get(c.Param("bookingId"))
	if !ok {
		respondError(c, http.StatusNotFound, "not_found", "booking activity not found")
		return
	}
	RespondSuccess(c, http.StatusOK, a)
}
