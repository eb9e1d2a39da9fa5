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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/videotube-backend/internal/auth"
	"github.com/AnshRaj112/videotube-backend/internal/config"
	"github.com/AnshRaj112/videotube-backend/internal/database"
	"github.com/AnshRaj112/videotube-backend/internal/handlers"
	"github.com/AnshRaj112/videotube-backend/internal/middleware"
	"github.com/AnshRaj112/videotube-backend/internal/routes"
	"github.com/AnshRaj112/videotube-backend/internal/services"
	"github.com/AnshRaj112/videotube-backend/internal/store"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	ctx := context.Background()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open user store: ", err)
	}
	defer closeStore()

	if err := st.EnsureIndexes(ctx); err != nil {
		log.Fatal("Failed to ensure user indexes: ", err)
	}
	log.Println("✅ User indexes ensured")

	// Redis is optional; without it profiles are always read from the store
	var redisClient *redis.Client
	if cfg.RedisURI != "" {
		log.Printf("Connecting to Redis...")
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURI)
		if err != nil {
			log.Printf("⚠️  WARNING: Redis unavailable, user cache disabled: %v", err)
		} else {
			defer redisClient.Close()
		}
	}
	cache := services.NewUserCache(redisClient, services.DefaultUserCacheTTL)

	media, err := services.NewMediaResolver(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Cloudinary: ", err)
	}
	if media.Available() {
		log.Println("✅ Cloudinary service initialized")
	} else {
		log.Println("⚠️  WARNING: Cloudinary credentials not found. Registration and media updates will fail")
	}

	if err := os.MkdirAll(cfg.UploadTempDir, 0o755); err != nil {
		log.Fatal("Failed to create upload temp dir: ", err)
	}

	accounts := services.NewAccountService(st, auth.NewTokenService(cfg), media, cache)
	users := handlers.NewUserHandler(accounts, cfg)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security headers enabled")
	}

	routes.SetupRoutes(r, users, middleware.VerifyJWT(accounts))

	log.Println("📋 Registered routes:")
	for _, route := range routes.Routes {
		log.Println("  " + route)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("🚀 VideoTube backend running on :%s (store: %s)", cfg.Port, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  WARNING: graceful shutdown failed: %v", err)
	}
}

// openStore connects the backend named by STORE_DRIVER and returns its closer.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Println("Troubleshooting tips:")
			log.Println("1. Check if your IP is whitelisted in MongoDB Atlas")
			log.Println("2. Verify your connection string format (should use mongodb+srv:// for Atlas)")
			log.Println("3. Check if the cluster is running (not paused)")
			return nil, nil, err
		}
		closeMongo := func() {
			if err := database.DisconnectMongo(client); err != nil {
				log.Printf("⚠️  WARNING: MongoDB disconnect failed: %v", err)
			}
		}
		return store.NewMongo(db), closeMongo, nil

	case config.StorePostgres:
		log.Printf("Connecting to PostgreSQL at %s...", database.MaskURI(cfg.PostgresURI))
		db, err := database.ConnectPostgres(ctx, cfg.PostgresURI)
		if err != nil {
			return nil, nil, err
		}
		closePostgres := func() {
			if err := db.Close(); err != nil {
				log.Printf("⚠️  WARNING: PostgreSQL close failed: %v", err)
			}
		}
		return store.NewPostgres(db), closePostgres, nil

	case config.StoreMemory:
		log.Println("⚠️  WARNING: using in-memory user store; data is lost on restart")
		return store.NewMemory(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
