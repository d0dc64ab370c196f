package flowcore

import (
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	DB     *gorm.DB
	Logger zerolog.Logger
	Redis  *redis.Client
	// Nats is nil when NATS_URL is unset or the server was unreachable at start.
	Nats *nats.Conn
)
