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

	authservice "findy/internal/app/services/auth"
	chatservice "findy/internal/app/services/chat"
	favoriteservice "findy/internal/app/services/favorites"
	listingservice "findy/internal/app/services/listings"
	paymentservice "findy/internal/app/services/payments"
	reviewservice "findy/internal/app/services/reviews"
	domainauth "findy/internal/domain/auth"
	domainchat "findy/internal/domain/chat"
	domainfav "findy/internal/domain/favorites"
	domainlistings "findy/internal/domain/listings"
	domainpayments "findy/internal/domain/payments"
	domainreviews "findy/internal/domain/reviews"
	domainuser "findy/internal/domain/user"
	"findy/internal/infra/broker/kafka"
	"findy/internal/infra/config"
	mongodb "findy/internal/infra/db/mongo"
	ginserver "findy/internal/infra/http/gin"
	"findy/internal/infra/obs"
	"findy/internal/infra/security"
	"findy/internal/infra/storage/memory"
	"findy/internal/infra/storage/s3"
	"findy/internal/infra/ws"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	st, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}
	defer st.close()

	var events chatservice.EventPublisher
	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Warn("kafka unavailable, chat events disabled", "error", err)
		} else {
			events = kafka.NewChatEvents(producer, cfg.KafkaTopicPrefix)
			defer producer.Close()
		}
	}

	uploader := buildUploader(cfg, logger)

	authSvc := &authservice.Service{
		Users:      st.users,
		Sessions:   st.sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	chatSvc := &chatservice.Service{
		Conversations: st.conversations,
		Messages:      st.messages,
		Users:         st.users,
		Listings:      st.listings,
		Events:        events,
		Logger:        logger,
	}
	listingSvc := &listingservice.Service{Listings: st.listings, Logger: logger}
	favoriteSvc := &favoriteservice.Service{Favorites: st.favorites, Listings: st.listings, Logger: logger}
	reviewSvc := &reviewservice.Service{Reviews: st.reviews, Listings: st.listings, Logger: logger}
	paymentSvc := &paymentservice.Service{
		Payments: st.payments,
		Listings: st.listings,
		Gateway:  &memory.StubGateway{},
		Currency: cfg.PaymentCurrency,
		Logger:   logger,
	}

	if cfg.FixturesPath != "" {
		if err := loadListingFixtures(ctx, cfg.FixturesPath, st.listings); err != nil {
			logger.Warn("listing fixtures load failed", "error", err, "path", cfg.FixturesPath)
		}
	}

	hub := ws.NewHub()
	gateway := ws.NewGateway(hub, chatSvc, authSvc, logger)

	handlers := ginserver.Handlers{
		Auth:      &ginserver.AuthHandler{Service: authSvc, Logger: logger},
		Listing:   &ginserver.ListingHandler{Service: listingSvc, Logger: logger},
		Favorite:  &ginserver.FavoriteHandler{Service: favoriteSvc, Logger: logger},
		Review:    &ginserver.ReviewHandler{Service: reviewSvc, Logger: logger},
		Message:   &ginserver.MessageHandler{Chat: chatSvc, Logger: logger},
		Payment:   &ginserver.PaymentHandler{Service: paymentSvc, Logger: logger},
		Upload:    &ginserver.UploadHandler{Uploader: uploader, Logger: logger},
		Websocket: gateway.Handle,
		AuthMiddleware: ginserver.AuthMiddleware{
			Service: authSvc,
			Logger:  logger,
		}.Handle,
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: st.ready,
	}, handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type stores struct {
	conversations domainchat.ConversationStore
	messages      domainchat.MessageStore
	users         domainuser.Repository
	sessions      domainauth.SessionStore
	listings      domainlistings.Repository
	favorites     domainfav.Repository
	reviews       domainreviews.Repository
	payments      domainpayments.Repository

	ready func() error
	close func()
}

func buildStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, error) {
	if cfg.StorageMode == "memory" {
		logger.Info("running on in-memory storage")
		return stores{
			conversations: memory.NewConversationStore(),
			messages:      memory.NewMessageStore(),
			users:         memory.NewUserRepository(),
			sessions:      memory.NewSessionStore(),
			listings:      memory.NewListingRepository(),
			favorites:     memory.NewFavoriteRepository(),
			reviews:       memory.NewReviewRepository(),
			payments:      memory.NewPaymentRepository(),
			ready:         func() error { return nil },
			close:         func() {},
		}, nil
	}

	client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return stores{}, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		return stores{}, err
	}
	if err := client.EnsureIndexes(ctx); err != nil {
		return stores{}, err
	}
	logger.Info("mongo connected", "database", cfg.MongoDB)
	return stores{
		conversations: mongodb.NewConversationRepository(client.DB),
		messages:      mongodb.NewMessageRepository(client.DB),
		users:         mongodb.NewUserRepository(client.DB),
		sessions:      mongodb.NewSessionRepository(client.DB),
		listings:      mongodb.NewListingRepository(client.DB),
		favorites:     mongodb.NewFavoriteRepository(client.DB),
		reviews:       mongodb.NewReviewRepository(client.DB),
		payments:      mongodb.NewPaymentRepository(client.DB),
		ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		},
		close: func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.DB.Client().Disconnect(disconnectCtx)
		},
	}, nil
}

func buildUploader(cfg config.Config, logger *slog.Logger) s3.Uploader {
	client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
	if err != nil {
		logger.Warn("object storage unavailable, uploads disabled", "error", err)
		return s3.NoopUploader{}
	}
	return client
}

type listingFixture struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"ownerId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         int64     `json:"price"`
	Coordinates   []float64 `json:"coordinates"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	PureVeg       bool      `json:"pureVeg"`
	Gender        string    `json:"gender"`
	EarlyBird     bool      `json:"earlyBird"`
	NightOwl      bool      `json:"nightOwl"`
	Images        []string  `json:"images"`
	Amenities     []string  `json:"amenities"`
	AvailableFrom time.Time `json:"availableFrom"`
}

// loadListingFixtures seeds the catalog from a JSON file so the memory mode
// starts with browsable data.
func loadListingFixtures(ctx context.Context, path string, repo domainlistings.Repository) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fixtures []listingFixture
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return fmt.Errorf("parse fixtures: %w", err)
	}
	for _, f := range fixtures {
		params := domainlistings.CreateParams{
			ID:          domainlistings.ListingID(f.ID),
			OwnerID:     domainuser.ID(f.OwnerID),
			Title:       f.Title,
			Description: f.Description,
			Price:       f.Price,
			Address: domainlistings.Address{
				City:  f.City,
				State: f.State,
			},
			PureVeg: f.PureVeg,
			Gender:  f.Gender,
			Lifestyle: domainlistings.Lifestyle{
				EarlyBird: f.EarlyBird,
				NightOwl:  f.NightOwl,
			},
			Images:        f.Images,
			Amenities:     f.Amenities,
			AvailableFrom: f.AvailableFrom,
		}
		if len(f.Coordinates) == 2 {
			params.Location = domainlistings.Location{
				Longitude: f.Coordinates[0],
				Latitude:  f.Coordinates[1],
			}
		}
		listing, err := domainlistings.NewListing(params)
		if err != nil {
			return fmt.Errorf("fixture %q: %w", f.Title, err)
		}
		if err := repo.Save(ctx, listing); err != nil {
			return err
		}
	}
	return nil
}
