package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"findy/internal/infra/config"
	"findy/internal/infra/obs"
)

// Handlers aggregates the HTTP surface. A nil handler leaves its routes
// unregistered, which keeps tests focused on one area.
type Handlers struct {
	Auth      *AuthHandler
	Listing   *ListingHandler
	Favorite  *FavoriteHandler
	Review    *ReviewHandler
	Message   *MessageHandler
	Payment   *PaymentHandler
	Upload    *UploadHandler
	Websocket gin.HandlerFunc

	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	router := NewRouter(obsMW, health, h)
	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

// NewRouter builds the full route table. Split out of NewServer so handler
// tests can run against the real routing.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api")
	api.GET("/health", health.Livez)

	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
		api.PUT("/auth/profile", h.Auth.UpdateProfile)
	}
	if h.Listing != nil {
		api.GET("/listings", h.Listing.List)
		api.POST("/listings", h.Listing.Create)
		api.GET("/listings/:id", h.Listing.Get)
		api.PUT("/listings/:id", h.Listing.Update)
		api.DELETE("/listings/:id", h.Listing.Delete)
		api.GET("/search", h.Listing.Search)
	}
	if h.Favorite != nil {
		api.GET("/favorites", h.Favorite.List)
		api.POST("/favorites", h.Favorite.Add)
		api.DELETE("/favorites/:listingId", h.Favorite.Remove)
		api.GET("/favorites/check/:listingId", h.Favorite.Check)
	}
	if h.Review != nil {
		api.POST("/reviews", h.Review.Create)
		api.GET("/reviews/listing/:listingId", h.Review.ListForListing)
	}
	if h.Message != nil {
		api.POST("/messages/conversation", h.Message.StartConversation)
		api.GET("/messages/conversations", h.Message.ListConversations)
		api.GET("/messages/conversation/:conversationId", h.Message.ListMessages)
		api.POST("/messages", h.Message.SendMessage)
	}
	if h.Payment != nil {
		api.POST("/payments/create-intent", h.Payment.CreateIntent)
		api.POST("/payments/confirm", h.Payment.Confirm)
		api.GET("/payments", h.Payment.History)
	}
	if h.Upload != nil {
		api.POST("/upload", h.Upload.Upload)
	}
	if h.Websocket != nil {
		router.GET("/ws", h.Websocket)
	}

	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
