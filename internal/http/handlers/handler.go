package handlers

import (
	"sync"

	"github.com/gin-gonic/gin"

	"traintrack/internal/domain/models"
	"traintrack/internal/events"
	"traintrack/internal/services"
)

// TrainCatalog is the read side of the seat inventory.
type TrainCatalog interface {
	Lookup(trainNumber string) (models.TrainRoute, error)
	SearchByRoute(from, to string) []models.TrainRoute
}

type Handler struct {
	Bookings *services.BookingService
	Auth     *services.AuthService
	Trains   TrainCatalog
	Docs     services.DocsService
	Activity *events.ActivityReadModel

	routerMu sync.RWMutex
	router   *gin.Engine
}

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func (h *Handler) SetRouter(r *gin.Engine) {
	h.routerMu.Lock()
	defer h.routerMu.Unlock()
	h.router = r
}
