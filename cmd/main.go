package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ideascope/ideascope-backend/internal/config"
	"github.com/ideascope/ideascope-backend/internal/db"
	"github.com/ideascope/ideascope-backend/internal/handlers"
	"github.com/ideascope/ideascope-backend/internal/locks"
	"github.com/ideascope/ideascope-backend/internal/logger"
	"github.com/ideascope/ideascope-backend/internal/middleware"
	"github.com/ideascope/ideascope-backend/internal/observability"
	"github.com/ideascope/ideascope-backend/internal/repos"
	"github.com/ideascope/ideascope-backend/internal/server"
	"github.com/ideascope/ideascope-backend/internal/services"
	"github.com/ideascope/ideascope-backend/internal/uniqueness"
	"github.com/ideascope/ideascope-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	shutdownTracing := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "ideascope-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownTracing != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(ctx)
		}()
	}

	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	uniqCfg, err := config.Load(log)
	if err != nil {
		log.Error("Invalid uniqueness config", "error", err)
		os.Exit(1)
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	roomRepo := repos.NewRoomRepo(thePG, log)
	ideaRepo := repos.NewIdeaRepo(thePG, log)
	paperRepo := repos.NewPaperRepo(thePG, log)

	// Corpus lock: redis when configured, in-process otherwise.
	var locker locks.Locker
	if redisAddr := utils.GetEnv("REDIS_ADDR", "", log); redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: utils.GetEnv("REDIS_PASSWORD", "", log),
			DB:       utils.GetEnvAsInt("REDIS_DB", 0, log),
		})
		locker = locks.NewRedisLocker(redisClient, log)
		log.Info("Using redis corpus locks", "addr", redisAddr)
	} else {
		locker = locks.NewLocalLocker()
		log.Info("Using in-process corpus locks")
	}

	// Services
	log.Info("Setting up services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService; file storage disabled", "error", err)
		bucketService = nil
	}

	var openaiClient services.OpenAIClient
	if os.Getenv("OPENAI_API_KEY") != "" {
		openaiClient, err = services.NewOpenAIClient(log)
		if err != nil {
			log.Error("Could not init OpenAIClient", "error", err)
			os.Exit(1)
		}
	}

	var embedder services.EmbeddingClient
	if strings.EqualFold(utils.GetEnv("EMBEDDING_PROVIDER", "local", log), "openai") {
		if openaiClient == nil {
			log.Error("EMBEDDING_PROVIDER=openai requires OPENAI_API_KEY")
			os.Exit(1)
		}
		embedder = services.NewOpenAIEmbeddingClient(log, openaiClient)
	} else {
		embedder = services.NewLocalEmbeddingClient(log)
	}

	// Pairwise comparison backend: deterministic embedding cosine by
	// default, the language model when explicitly asked for.
	var similarity services.SimilarityProvider
	if strings.EqualFold(utils.GetEnv("SIMILARITY_PROVIDER", "embedding", log), "generative") {
		if openaiClient == nil {
			log.Error("SIMILARITY_PROVIDER=generative requires OPENAI_API_KEY")
			os.Exit(1)
		}
		similarity = services.NewGenerativeSimilarityProvider(log, openaiClient)
	} else {
		similarity = services.NewEmbeddingSimilarityProvider(log, embedder)
	}

	var avatarService services.AvatarService
	if bucketService != nil {
		avatarService, err = services.NewAvatarService(log, bucketService)
		if err != nil {
			log.Warn("Could not init AvatarService; avatars disabled", "error", err)
		}
	}

	authService := services.NewAuthService(
		thePG, log, userRepo, avatarService, userTokenRepo,
		jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second,
		time.Duration(refreshTokenTTL)*time.Second,
	)
	userService := services.NewUserService(thePG, log, userRepo)
	roomService := services.NewRoomService(thePG, log, roomRepo)
	ideaService := services.NewIdeaService(
		thePG, log, ideaRepo, roomRepo, embedder, similarity, locker,
		uniqueness.NewChecker(uniqCfg.IdeaChecker()),
	)
	paperService := services.NewPaperService(
		thePG, log, paperRepo, embedder, bucketService, locker,
		uniqueness.NewChecker(uniqCfg.PaperChecker()),
		uniqCfg.PaperWeights,
	)

	var aiDetection services.AIDetectionService
	if openaiClient != nil {
		aiDetection = services.NewAIDetectionService(thePG, log, openaiClient, paperRepo)
	} else {
		log.Warn("OPENAI_API_KEY not set; AI-text detection disabled")
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	roomHandler := handlers.NewRoomHandler(roomService)
	ideaHandler := handlers.NewIdeaHandler(ideaService)
	paperHandler := handlers.NewPaperHandler(paperService, aiDetection)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		UserHandler:    userHandler,
		RoomHandler:    roomHandler,
		IdeaHandler:    ideaHandler,
		PaperHandler:   paperHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
