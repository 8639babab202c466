package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	intconfig "traintrack/internal/config"
	"traintrack/internal/domain/models"
	"traintrack/internal/events"
	api "traintrack/internal/http"
	"traintrack/internal/http/handlers"
	"traintrack/internal/repositories"
	"traintrack/internal/services"
	"traintrack/internal/utils"
)

const sessionPruneInterval = 10 * time.Minute

type App struct {
	env             intconfig.Env
	pubSub          *gochannel.GoChannel
	watermillRouter *message.Router
	httpServer      *http.Server
	sessions        *repositories.SessionRepository

	Inventory *repositories.InventoryRepository
	Bookings  *services.BookingService
}

// New wires every component and registers the given train catalog.
func New(env intconfig.Env, trains []models.TrainRoute) (*App, error) {
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	inventory := repositories.NewInventoryRepository()
	for _, tr := range trains {
		if err := inventory.Register(tr); err != nil {
			return nil, fmt.Errorf("could not register train %s: %w", tr.TrainNumber, err)
		}
	}

	watermillLogger := events.NewWatermillLogger(logrus.WithField("component", "events"))
	pubSub := events.NewPubSub(watermillLogger)
	eventBus, err := events.NewEventBus(pubSub, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("could not create event bus: %w", err)
	}
	activity := events.NewActivityReadModel()
	watermillRouter, err := events.NewRouter(pubSub, activity, watermillLogger)
	if err != nil {
		return nil, err
	}

	bookings := services.NewBookingService(
		inventory,
		repositories.NewBookingRepository(),
		services.NewSeatAllocator(utils.DefaultRandom),
		events.NewPublisher(eventBus),
		utils.DefaultRandom,
	)
	sessions := repositories.NewSessionRepository()
	auth := &services.AuthService{
		Users:      repositories.NewUserRepository(),
		Sessions:   sessions,
		Secret:     []byte(env.JWTSecret),
		TTL:        env.SessionTTL,
		BcryptCost: env.BcryptCost,
	}

	handler := &handlers.Handler{
		Bookings: bookings,
		Auth:     auth,
		Trains:   inventory,
		Docs:     services.DocsService{},
		Activity: activity,
	}

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           api.NewRouter(env, handler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &App{
		env:             env,
		pubSub:          pubSub,
		watermillRouter: watermillRouter,
		httpServer:      srv,
		sessions:        sessions,
		Inventory:       inventory,
		Bookings:        bookings,
	}, nil
}

// Run blocks until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.watermillRouter.Run(ctx)
	})

	g.Go(func() error {
		// the HTTP server starts only once event handlers are subscribed
		select {
		case <-a.watermillRouter.Running():
		case <-ctx.Done():
			return nil
		}

		logrus.Infof("Server running at http://localhost%s", a.env.AppAddr)
		err := a.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logrus.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.env.ShutdownTimeout)
		defer cancel()
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		if err := a.pubSub.Close(); err != nil {
			return fmt.Errorf("pubsub close: %w", err)
		}
		logrus.Info("Server stopped cleanly.")
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(sessionPruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := a.sessions.Prune(); n > 0 {
					logrus.WithField("sessions", n).Debug("pruned expired sessions")
				}
			}
		}
	})

	return g.Wait()
}
