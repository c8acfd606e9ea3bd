package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"photo-prints-backend/internal/cart"
	"photo-prints-backend/internal/checkout"
	"photo-prints-backend/internal/config"
	"photo-prints-backend/internal/database"
	"photo-prints-backend/internal/geocode"
	"photo-prints-backend/internal/handlers"
	"photo-prints-backend/internal/middleware"
	"photo-prints-backend/internal/paypal"
	"photo-prints-backend/internal/realtime"
	"photo-prints-backend/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database connection string
	dbURL := cfg.DatabaseURL
	if dbURL == "" {
		log.Println("Warning: DATABASE_URL not set. Orders will not be persisted and migrations will be skipped.")
		log.Println("Please set DATABASE_URL environment variable with your Supabase PostgreSQL connection string")
	}

	// Create database client (handlers tolerate a nil client)
	var dbClient *database.Client
	if dbURL != "" {
		var err error
		dbClient, err = database.NewClient(dbURL)
		if err != nil {
			log.Printf("Warning: Failed to initialize database client: %v", err)
			log.Println("Order intake and the admin listing will be unavailable.")
		} else {
			defer dbClient.Close()

			if err := dbClient.Migrate(); err != nil {
				log.Printf("Warning: Migration failed: %v", err)
			} else {
				log.Println("Migrations completed successfully")
			}
		}
	}

	// Initialize Supabase clients
	storageClient, err := storage.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	realtimeClient, err := realtime.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey)
	if err != nil {
		log.Fatalf("Failed to initialize realtime client: %v", err)
	}

	// Initialize payment and geocoding clients
	paypalClient := paypal.NewClient(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret)
	geocodeClient := geocode.NewClient(cfg.GeocodeBaseURL)

	// Cart store and checkout manager. Drafts are persisted only when the
	// database is reachable.
	cartStore := cart.NewStore()
	var draftStore checkout.DraftStore
	var orderStore handlers.OrderStore
	if dbClient != nil {
		draftStore = dbClient
		orderStore = dbClient
	}
	checkoutManager := checkout.NewManager(paypalClient, geocodeClient, draftStore, cfg.OrderSubmitURL)

	// Initialize handlers
	cartsHandler := handlers.NewCartsHandler(cartStore)
	checkoutHandler := handlers.NewCheckoutHandler(cartStore, checkoutManager)
	ordersHandler := handlers.NewOrdersHandler(orderStore, storageClient, realtimeClient)

	// Setup router
	router := gin.Default()

	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// API routes
	api := router.Group("/api/v1")

	// Catalog
	api.GET("/catalog", handlers.GetCatalog)

	// Cart routes
	api.POST("/carts", cartsHandler.CreateCart)
	api.GET("/carts/:cart_id", cartsHandler.GetCart)
	api.POST("/carts/:cart_id/images", cartsHandler.UploadImages)
	api.DELETE("/carts/:cart_id/images/:image_id", cartsHandler.DeleteImage)
	api.PATCH("/carts/:cart_id/images/:image_id", cartsHandler.UpdateImage)
	api.GET("/carts/:cart_id/images/:image_id/preview", cartsHandler.GetImagePreview)
	api.POST("/carts/:cart_id/images/:image_id/edit", cartsHandler.EditImage)
	api.POST("/carts/:cart_id/images/:image_id/revert", cartsHandler.RevertImage)
	api.PUT("/carts/:cart_id/selection", cartsHandler.UpdateSelection)
	api.POST("/carts/:cart_id/promo", cartsHandler.ApplyPromo)
	api.GET("/carts/:cart_id/totals", cartsHandler.GetTotals)

	// Checkout routes
	api.GET("/carts/:cart_id/checkout", checkoutHandler.GetCheckout)
	api.PUT("/carts/:cart_id/checkout/address", checkoutHandler.PutAddress)
	api.POST("/carts/:cart_id/checkout/location", checkoutHandler.PostLocation)
	api.POST("/carts/:cart_id/checkout/capture", checkoutHandler.PostCapture)
	api.POST("/carts/:cart_id/checkout/submit", checkoutHandler.PostSubmit)

	// Order intake (no auth, called by the submission step)
	router.POST("/api/order", ordersHandler.IntakeOrder)

	// Admin listing (bearer token)
	admin := router.Group("/api")
	admin.Use(middleware.AdminAuth(cfg))
	admin.GET("/orders", ordersHandler.ListOrders)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
