package flowcore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"flowcore/internal/editor"
)

type AppConfig struct {
	Mode         string
	ApiPort      string
	MainDatabase struct {
		Host         string
		Port         string
		User         string
		Password     string
		DatabaseName string
		SSLMode      string
	}
	JWTConfig struct {
		Secret            string
		Expiration        int // in minutes
		RefreshExpiration int // in days
	}
	RedisConfig struct {
		Host     string
		Port     string
		Password string
		DB       int
	}
	NatsConfig struct {
		URL      string
		TenantID string
	}
	EditorConfig struct {
		SaveDebounce time.Duration
		DraftTTL     time.Duration
		NodeWidth    float64
		HeaderHeight float64
		PinRowHeight float64
		BannerHeight float64
		EdgeTension  float64
		NodeSpacing  float64
	}
}

var config AppConfig

func InitConfig(envfile string) {
	err := godotenv.Load(envfile)
	if err != nil {
		log.Fatal(fmt.Sprintf("Error loading %s file: %s", envfile, err))
	}
	config = LoadConfig()

	Logger = initLogger()
	DB = connectToPostgres(config.MainDatabase.Host, config.MainDatabase.User, config.MainDatabase.Password, config.MainDatabase.DatabaseName, config.MainDatabase.Port, config.MainDatabase.SSLMode)
	Redis = connectToRedis(config.RedisConfig.Host, config.RedisConfig.Port, config.RedisConfig.Password, config.RedisConfig.DB)
	Nats = connectToNats(config.NatsConfig.URL)
}

// LoadConfig reads the configuration from the environment without opening any
// connection.
func LoadConfig() AppConfig {
	cfg := AppConfig{
		Mode:    getEnvOrPanic("RUN_MODE"),
		ApiPort: getEnvOrPanic("API_PORT"),
	}
	cfg.MainDatabase.Host = getEnvOrPanic("DB_HOSTNAME")
	cfg.MainDatabase.Port = getEnvOrPanic("DB_PORT")
	cfg.MainDatabase.User = getEnvOrPanic("DB_USERNAME")
	cfg.MainDatabase.Password = getEnvOrPanic("DB_PASSWORD")
	cfg.MainDatabase.DatabaseName = getEnvOrPanic("DB_NAME")
	cfg.MainDatabase.SSLMode = getEnvOrPanic("DB_SSL_MODE")

	cfg.JWTConfig.Secret = getEnvOrPanic("JWT_SECRET")
	cfg.JWTConfig.Expiration = getIntEnvOrPanic("JWT_EXPIRATION_MINUTES")
	cfg.JWTConfig.RefreshExpiration = getIntEnvOrPanic("JWT_REFRESH_EXPIRATION_DAYS")

	cfg.RedisConfig.Host = GetEnv("REDIS_HOST", "localhost")
	cfg.RedisConfig.Port = GetEnv("REDIS_PORT", "6379")
	cfg.RedisConfig.Password = GetEnv("REDIS_PASSWORD", "")
	cfg.RedisConfig.DB = getIntEnvOrDefault("REDIS_DB", 0)

	cfg.NatsConfig.URL = GetEnv("NATS_URL", "")
	cfg.NatsConfig.TenantID = GetEnv("TENANT_ID", "default")

	cfg.EditorConfig.SaveDebounce = time.Duration(getIntEnvOrDefault("EDITOR_SAVE_DEBOUNCE_MS", 1000)) * time.Millisecond
	cfg.EditorConfig.DraftTTL = time.Duration(getIntEnvOrDefault("EDITOR_DRAFT_TTL_MINUTES", 60*24)) * time.Minute
	cfg.EditorConfig.NodeWidth = getFloatEnvOrDefault("EDITOR_NODE_WIDTH", 0)
	cfg.EditorConfig.HeaderHeight = getFloatEnvOrDefault("EDITOR_HEADER_HEIGHT", 0)
	cfg.EditorConfig.PinRowHeight = getFloatEnvOrDefault("EDITOR_PIN_ROW_HEIGHT", 0)
	cfg.EditorConfig.BannerHeight = getFloatEnvOrDefault("EDITOR_BANNER_HEIGHT", 0)
	cfg.EditorConfig.EdgeTension = getFloatEnvOrDefault("EDITOR_EDGE_TENSION", 0)
	cfg.EditorConfig.NodeSpacing = getFloatEnvOrDefault("EDITOR_NODE_SPACING", 0)
	return cfg
}

func GetConfig() AppConfig {
	return config
}

// EditorLayout applies the configured overrides on top of the stock canvas skin.
func (cfg AppConfig) EditorLayout() editor.Layout {
	l := editor.DefaultLayout()
	e := cfg.EditorConfig
	if e.NodeWidth > 0 {
		l.NodeWidth = e.NodeWidth
	}
	if e.HeaderHeight > 0 {
		l.HeaderHeight = e.HeaderHeight
	}
	if e.PinRowHeight > 0 {
		l.PinRowHeight = e.PinRowHeight
	}
	if e.BannerHeight > 0 {
		l.BannerHeight = e.BannerHeight
	}
	if e.EdgeTension > 0 {
		l.EdgeTension = e.EdgeTension
	}
	if e.NodeSpacing > 0 {
		l.NodeSpacing = e.NodeSpacing
	}
	return l
}

func getEnvOrPanic(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("%s must be set", key)
	}
	return value
}

func GetEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnvOrPanic(key string) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		log.Fatalf("%s must be an integer", key)
	}
	return value
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func getFloatEnvOrDefault(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func connectToPostgres(host string, username string, password string, dbname string, port string, ssl string) *gorm.DB {
	var err error
	var db *gorm.DB
	var conn *sql.DB

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, username, password, dbname, port, ssl)
	if db, err = gorm.Open(postgres.Open(dsn),
		&gorm.Config{
			Logger: logger.New(
				log.New(os.Stdout, "\r\n", log.LstdFlags),
				logger.Config{
					SlowThreshold: 0,
					LogLevel:      logger.Error,
				},
			),
			TranslateError: true,
			NowFunc: func() time.Time {
				return time.Now()
			},
			NamingStrategy: schema.NamingStrategy{
				SingularTable: true,
			}}); err != nil {
		panic(err)
	}
	if conn, err = db.DB(); err != nil {
		panic(err)
	}
	conn.SetMaxIdleConns(10)
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxLifetime(time.Hour)
	return db
}

func initLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
		NoColor:    false,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("  %s  ", i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s=", i)
		},
		FormatFieldValue: func(i interface{}) string {
			return fmt.Sprintf("%s", i)
		},
	}

	level := zerolog.InfoLevel
	if config.Mode == "dev" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(output).Level(level).With().Timestamp().Caller().Logger()
}

func connectToRedis(host string, port string, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	return client
}

// connectToNats is best effort: change notifications are optional, so a missing
// or unreachable server leaves Nats nil.
func connectToNats(url string) *nats.Conn {
	if url == "" {
		return nil
	}
	nc, err := nats.Connect(url, nats.Name("flowcore-api"), nats.MaxReconnects(-1))
	if err != nil {
		Logger.Warn().Err(err).Str("url", url).Msg("NATS unavailable, flow notifications disabled")
		return nil
	}
	return nc
}
