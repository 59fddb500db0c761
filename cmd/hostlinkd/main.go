package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"hostlink/internal/claim"
	"hostlink/internal/database"
	"hostlink/internal/server"
	"hostlink/pkg/auth"
	"hostlink/pkg/config"
)

func init() {
	// Configure zerolog for human-friendly console output
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	// Load configuration
	configFile := config.FindConfigFile("hostlink")
	envFile := config.FindEnvironmentFile("hostlink")

	cfg, err := config.Load(configFile, envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Configure logging based on config
	cfg.Log.ConfigureZerolog()

	log.Info().Msg("Starting Hostlink Service")
	log.Info().Str("config_file", configFile).Msg("Configuration loaded")
	log.Info().
		Str("log_level", cfg.Log.Level).
		Bool("debug", cfg.Log.Debug).
		Msg("Log level configured")

	// Initialize database
	db, err := database.New(cfg.Database.DSN, database.WithDebug(cfg.Log.Debug))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func(db *database.BunDB) {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connection")
		}
	}(db)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecretKey, cfg.Auth.TokenTTL)

	// Initialize claim service
	generator := claim.NewGeneratorWithLength(cfg.Claims.CodeLength)
	claimService := claim.NewService(db, generator, cfg.Claims.TTL, cfg.Claims.MaxActivePerUser)

	// Initialize HTTP handler and router
	handler := server.NewHandler(db, jwtManager, claimService, cfg)

	// Create server with HTTP/2 support
	srv := &http.Server{
		Addr:           cfg.GetListenAddress(),
		Handler:        h2c.NewHandler(handler.Router(), &http2.Server{}),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	log.Info().
		Str("address", cfg.GetListenAddress()).
		Str("database", cfg.Database.Driver).
		Dur("claim_ttl", cfg.Claims.TTL).
		Int("claim_code_length", cfg.Claims.CodeLength).
		Msg("Starting hostlink server")
	log.Info().Msgf("Health check: http://%s/health", cfg.GetListenAddress())

	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
