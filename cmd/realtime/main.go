package main

import (
	"net/http"
	"os"

	"flowcore/internal/realtime"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	cfg := realtime.LoadConfig()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).
		With().Timestamp().Str("service", "realtime").Logger()
	if cfg.Mode != "dev" {
		logger = logger.Level(zerolog.InfoLevel)
	}

	if cfg.JWTSecret == "" {
		logger.Fatal().Msg("JWT_SECRET is required")
	}

	hub := realtime.NewHub(logger)
	go hub.Run()

	bridge, err := realtime.NewNATSBridge(cfg.NatsURL, cfg.TenantID, hub, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("NATS bridge")
	}
	defer bridge.Close()

	if err := bridge.Subscribe(); err != nil {
		logger.Fatal().Err(err).Msg("NATS subscribe")
	}

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		realtime.ServeWS(hub, cfg.JWTSecret, logger, w, r)
	})

	logger.Info().Str("addr", cfg.RealtimePort).Msg("Realtime service listening")
	if err := http.ListenAndServe(cfg.RealtimePort, nil); err != nil {
		logger.Fatal().Err(err).Msg("server")
	}
}
