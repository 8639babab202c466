package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"traintrack/internal/utils"
)

// GET /api/search?from=&to=&date=
func (h *Handler) SearchTrains(c *gin.Context) {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "Missing required parameter: from")
		return
	}
	if to == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "Missing required parameter: to")
		return
	}
	if date := c.Query("date"); date != "" {
		if _, err := utils.ParseDate(date); err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "date must be YYYY-MM-DD")
			return
		}
	}

	trains := h.Trains.SearchByRoute(from, to)
	resp := gin.H{
		"status": "success",
		"count":  len(trains),
		"trains": trains,
	}
	if len(trains) == 0 {
		resp["message"] = "No trains available for this route"
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/trains/:trainNumber
func (h *Handler) GetTrain(c *gin.Context) {
	train, err := h.Trains.Lookup(c.Param("trainNumber"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondSuccess(c, http.StatusOK, train)
}
