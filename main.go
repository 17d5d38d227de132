package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"subjectswap_server/config"
	"subjectswap_server/logger"
	"subjectswap_server/middleware"
	"subjectswap_server/routes"
	"subjectswap_server/services"
	"subjectswap_server/socket"
)

func main() {
	cfg := config.Load()

	log, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	logger.SetGlobal(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores
	users, conversations, s3Service := initBackends(ctx, cfg, log)

	cachedUsers := services.NewCachedUserDirectory(users, cfg.UserCacheTTL)
	scheduler, err := services.StartCacheEviction(cfg.UserCacheEvictSpec, cachedUsers, log)
	if err != nil {
		log.Fatal("failed to schedule user cache eviction", zap.Error(err))
	}
	defer scheduler.Stop()

	keys := initKeyDirectory(ctx, cfg, log)

	// Services
	verifier := services.NewJWTVerifier(cfg.JWTSecret)
	conversationLog := services.NewConversationLog(conversations, log)
	matchService := services.NewMatchService(cachedUsers, log)
	ratingService := services.NewRatingService(cachedUsers, log)
	profileService := services.NewProfileService(cachedUsers, log)
	chatService := services.NewChatService(conversationLog, cachedUsers, log)
	searchService := services.NewSearchService(cachedUsers, log)

	sessionCrypto, err := services.NewSessionCrypto()
	if err != nil {
		log.Fatal("failed to create chat key pair", zap.Error(err))
	}

	// Socket.IO
	opts := socket.Options{
		Verifier: verifier,
		Users:    cachedUsers.WithMaxAge(cfg.PeerCheckMaxAge),
		Log:      conversationLog,
		Keys:     keys,
		Crypto:   sessionCrypto,
		Policy:   socket.PolicyFor(cfg.DisconnectOnViolation),
		Logger:   log,
	}
	if s3Service != nil {
		opts.Blobs = s3Service
	}
	socketServer := socket.NewSocketServer(opts)
	socketServer.Start()
	defer func() { _ = socketServer.Close() }()

	// HTTP
	r := mux.NewRouter()
	r.Use(mux.MiddlewareFunc(middleware.Logging(log)))
	auth := middleware.Auth(verifier)

	routes.RegisterRoutes(r)
	routes.RegisterMatchRoutes(r, matchService, auth, log)
	routes.RegisterRatingRoutes(r, ratingService, auth, log)
	routes.RegisterUserProfileRoutes(r, profileService, cachedUsers, auth, log)
	routes.RegisterChatRoutes(r, chatService, auth, log)
	routes.RegisterSearchRoutes(r, searchService, auth, log)
	if s3Service != nil {
		routes.RegisterS3Routes(r, s3Service, auth, log)
	}
	r.PathPrefix("/socket.io/").Handler(socketServer)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: cfg.CORSAllowCredentials(),
	}).Handler(r)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	if cfg.IsDevelopment() {
		return logger.NewDevelopment()
	}
	return logger.New(cfg.LogLevel)
}

// initBackends picks the user and conversation stores. The S3 service is nil
// when no bucket is configured.
func initBackends(ctx context.Context, cfg *config.Config, log *logger.Logger) (services.UserDirectory, services.ConversationStore, *services.S3Service) {
	needAWS := cfg.StoreBackend == "dynamo" || cfg.S3BucketName != ""
	if !needAWS {
		log.Warn("using in-memory stores and no attachment storage")
		return services.NewMemoryUserDirectory(), services.NewMemoryConversationStore(), nil
	}

	awsCfg, err := services.LoadAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatal("failed to load AWS configuration", zap.Error(err))
	}

	var s3Service *services.S3Service
	if cfg.S3BucketName != "" {
		s3Service = services.NewS3Service(awsCfg, cfg.S3BucketName, cfg.S3PublicBaseURL, log)
		log.Info("S3 attachment storage enabled", zap.String("bucket", cfg.S3BucketName))
	}

	if cfg.StoreBackend != "dynamo" {
		log.Warn("using in-memory stores", zap.String("backend", cfg.StoreBackend))
		return services.NewMemoryUserDirectory(), services.NewMemoryConversationStore(), s3Service
	}

	dynamo := services.NewDynamoService(awsCfg, log)
	log.Info("DynamoDB stores enabled",
		zap.String("users_table", cfg.DynamoUsersTable),
		zap.String("conversations_table", cfg.DynamoConversationsTable))
	return services.NewUserProfileService(dynamo, cfg.DynamoUsersTable),
		services.NewDynamoConversationStore(dynamo, cfg.DynamoConversationsTable),
		s3Service
}

func initKeyDirectory(ctx context.Context, cfg *config.Config, log *logger.Logger) services.KeyDirectory {
	if cfg.KeyDirectoryBackend != "redis" {
		return services.NewMemoryKeyDirectory()
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	keys, err := services.NewRedisKeyDirectory(pingCtx, cfg.RedisURL)
	if err != nil {
		log.Fatal("failed to connect session key directory", zap.Error(err))
	}
	log.Info("session keys shared through redis")
	return keys
}
