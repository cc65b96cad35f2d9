package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parksmart/internal/config"
	"parksmart/internal/handler"
	"parksmart/internal/model"
	"parksmart/internal/notify"
	"parksmart/internal/repository"
	"parksmart/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const nearestLimit = 5

func main() {
	// Print version info
	log.Printf("ParkSmart API")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection (optional)
	var db *sqlx.DB
	if cfg.Database.DSN != "" {
		db, err = repository.Connect(
			cfg.Database.Driver,
			cfg.Database.DSN,
			cfg.Database.MaxConnections,
			cfg.Database.MaxIdleConnections,
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Printf("✅ Connected to %s database", cfg.Database.Driver)
	}

	catalog, err := openCatalog(cfg, db)
	if err != nil {
		log.Fatalf("Failed to open spot catalog: %v", err)
	}

	var bookings repository.BookingStore
	if db != nil {
		bookings, err = repository.NewSQLBookingStore(context.Background(), db)
		if err != nil {
			log.Fatalf("Failed to open booking store: %v", err)
		}
		log.Println("✅ Bookings are stored in the database")
	} else {
		bookings = repository.NewMemoryBookingStore()
		log.Println("⚠️  DATABASE_URL is empty - bookings are kept in memory")
	}

	// Booking broadcast (optional)
	var publisher service.BookingPublisher
	if cfg.MQTT.BrokerURL != "" {
		mqttPublisher, err := notify.NewMQTTPublisher(cfg.MQTT.BrokerURL, cfg.MQTT.ClientID, cfg.MQTT.Topic)
		if err != nil {
			log.Printf("⚠️  MQTT disabled: %v", err)
		} else {
			defer mqttPublisher.Close()
			publisher = mqttPublisher
		}
	}

	// Initialize services
	ranker := service.NewRanker(
		cfg.Ranking.WeightDistance,
		cfg.Ranking.WeightAvailability,
		cfg.Ranking.WeightPrice,
		cfg.Ranking.WeightRating,
	)
	defaultRef := model.GeoPoint{Lat: cfg.Geo.DefaultLat, Lng: cfg.Geo.DefaultLng}
	searchService := service.NewSearchService(catalog, ranker, defaultRef)

	builder := service.NewBookingBuilder(service.NewMonotonicIDGenerator())
	bookingService := service.NewBookingService(catalog, bookings, builder, publisher)

	resolver := service.NewIntentResolver(cfg.Debug())
	defaultLang, err := model.ParseLanguage(cfg.Assistant.DefaultLanguage)
	if err != nil {
		log.Printf("⚠️  %v, falling back to en", err)
		defaultLang = model.LangEnglish
	}
	sessions := service.NewSessionManager(catalog, resolver, service.UUIDGenerator{}, service.SessionConfig{
		DelayMin:        time.Duration(cfg.Assistant.TypingDelayMinMs) * time.Millisecond,
		DelayMax:        time.Duration(cfg.Assistant.TypingDelayMaxMs) * time.Millisecond,
		DefaultLanguage: defaultLang,
		Debug:           cfg.Debug(),
	})
	defer sessions.Close()

	// Voice input (optional)
	speech := service.NewSpeechClient(&cfg.Speech)
	if speech.IsEnabled() {
		sessions.SetTranscriber(speech)
		log.Printf("✅ Voice input enabled (%s)", cfg.Speech.Model)
	} else {
		log.Println("⚠️  SPEECH_API_KEY is empty - voice input is disabled")
	}

	log.Println("✅ Services initialized")

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "parksmart-api",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
			"sessions":   sessions.Len(),
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	handler.RegisterRoutes(router.Group("/api/v1"), handler.Handlers{
		Search:  handler.NewSearchHandler(searchService, sessions, nearestLimit),
		Booking: handler.NewBookingHandler(bookingService),
		Session: handler.NewSessionHandler(sessions),
		Chat:    handler.NewChatHandler(resolver, searchService),
		Import:  handler.NewImportHandler(searchService),
	})

	// Serve static files (frontend)
	// This function is implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API: http://localhost:%d/api/v1", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("✅ Server stopped")
}

// openCatalog selects the spot source named by CATALOG_SOURCE
func openCatalog(cfg *config.Config, db *sqlx.DB) (repository.SpotCatalog, error) {
	switch cfg.Catalog.Source {
	case "file":
		catalog, err := repository.LoadCatalogFile(cfg.Catalog.File)
		if err != nil {
			return nil, err
		}
		log.Printf("✅ Loaded %d spots from %s", catalog.Len(), cfg.Catalog.File)
		return catalog, nil
	case "sql":
		if db == nil {
			return nil, errors.New("CATALOG_SOURCE=sql requires DATABASE_URL")
		}
		catalog := repository.NewSQLCatalog(db)
		if err := catalog.InitSchema(context.Background()); err != nil {
			return nil, err
		}
		log.Println("✅ Reading spots from the parking_spots table")
		return catalog, nil
	default:
		log.Println("✅ Using the built-in Casablanca catalog")
		return repository.NewStaticCatalog(repository.CasablancaSpots()), nil
	}
}
