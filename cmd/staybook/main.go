package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"staybook/internal/app/bookingsvc"
	"staybook/internal/app/notify"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/listing"
	"staybook/internal/domain/notification"
	"staybook/internal/domain/user"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongostore "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/storage/memory"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, ready, cleanup, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: ready}, app)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (ginserver.Handlers, func() error, func(), error) {
	var (
		bookings      booking.Repository
		listings      listing.Repository
		users         user.Repository
		notifications notification.Repository
		resolver      ginserver.TokenResolver
		ready         = func() error { return nil }
		cleanup       = func() {}
	)

	if cfg.MongoURI != "" {
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB, cfg.MongoConnTimeout)
		if err != nil {
			return ginserver.Handlers{}, nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		bookings = mongostore.NewBookingRepository(client.DB)
		listings = mongostore.NewListingRepository(client.DB)
		users = mongostore.NewUserRepository(client.DB)
		notifications = mongostore.NewNotificationRepository(client.DB)
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		cleanup = func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Close(closeCtx); err != nil {
				logger.Warn("mongo disconnect failed", "error", err)
			}
		}
		logger.Info("using mongo storage", "database", cfg.MongoDB)
	} else {
		userRepo := memory.NewUserRepository()
		tokens := memory.NewTokenResolver(userRepo)
		listingRepo := memory.NewListingRepository()
		bookings = memory.NewBookingRepository()
		listings = listingRepo
		users = userRepo
		notifications = memory.NewNotificationRepository()
		resolver = tokens
		if err := loadFixtures(ctx, fixturesPath(), userRepo, listingRepo, tokens, logger); err != nil {
			logger.Warn("fixtures load failed", "error", err)
		}
		logger.Info("using in-memory storage")
	}

	var events bookingsvc.Events
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return ginserver.Handlers{}, nil, nil, fmt.Errorf("kafka producer: %w", err)
		}
		events = kafka.BookingEvents{Producer: producer, TopicPrefix: cfg.KafkaTopicPrefix}
		prevCleanup := cleanup
		cleanup = func() {
			if err := producer.Close(); err != nil {
				logger.Warn("kafka close failed", "error", err)
			}
			prevCleanup()
		}
		logger.Info("booking event stream enabled", "brokers", cfg.KafkaBrokers)
	}

	fanout := notify.Fanout{
		Notifications: notifications,
		Users:         users,
		Logger:        logger,
	}
	service := bookingsvc.New(bookings, listings, fanout, events, logger)

	handlers := ginserver.Handlers{
		Booking:      ginserver.BookingHandler{Service: service, Logger: logger},
		Notification: ginserver.NotificationHandler{Notifications: notifications, Logger: logger},
	}
	if resolver != nil {
		handlers.AuthMiddleware = ginserver.AuthMiddleware{Resolver: resolver, Logger: logger}.Handle
	}
	return handlers, ready, cleanup, nil
}

type fixtureFile struct {
	Users    []userFixture    `json:"users"`
	Listings []listingFixture `json:"listings"`
}

type userFixture struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

type listingFixture struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	Country      string   `json:"country"`
	Price        float64  `json:"price"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    float64  `json:"bathrooms"`
	MaxGuests    int      `json:"max_guests"`
	PropertyType string   `json:"property_type"`
	Amenities    []string `json:"amenities"`
	HostID       string   `json:"host_id"`
}

// loadFixtures seeds the in-memory stores from a JSON file so the service is
// usable without a database.
func loadFixtures(ctx context.Context, path string, users *memory.UserRepository, listings *memory.ListingRepository, tokens *memory.TokenResolver, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures fixtureFile
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures.Users {
		u, err := user.New(user.CreateParams{
			ID:        user.ID(fx.ID),
			Name:      fx.Name,
			Email:     fx.Email,
			Role:      user.Role(fx.Role),
			CreatedAt: now,
		})
		if err != nil {
			logger.Error("user fixture invalid", "user_id", fx.ID, "error", err)
			continue
		}
		if err := users.Save(ctx, u); err != nil {
			logger.Error("cannot store fixture user", "user_id", fx.ID, "error", err)
			continue
		}
		if fx.Token != "" {
			tokens.Register(fx.Token, u.ID)
		}
	}
	for _, fx := range fixtures.Listings {
		l, err := listing.New(listing.CreateParams{
			ID:           listing.ID(fx.ID),
			Title:        fx.Title,
			Description:  fx.Description,
			Address:      fx.Address,
			City:         fx.City,
			Country:      fx.Country,
			Price:        fx.Price,
			Bedrooms:     fx.Bedrooms,
			Bathrooms:    fx.Bathrooms,
			MaxGuests:    fx.MaxGuests,
			PropertyType: listing.PropertyType(fx.PropertyType),
			Amenities:    fx.Amenities,
			HostID:       user.ID(fx.HostID),
			CreatedAt:    now,
		})
		if err != nil {
			logger.Error("listing fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		l.Activate(now)
		if err := listings.Save(ctx, l); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", l.ID)
	}
	return nil
}

func fixturesPath() string {
	if v := os.Getenv("FIXTURES_PATH"); v != "" {
		return v
	}
	return "data/fixtures.json"
}
