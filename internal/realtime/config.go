package realtime

import "flowcore"

type Config struct {
	NatsURL      string
	TenantID     string
	JWTSecret    string
	RealtimePort string
	Mode         string
}

func LoadConfig() Config {
	return Config{
		NatsURL:      flowcore.GetEnv("NATS_URL", "nats://localhost:4222"),
		TenantID:     flowcore.GetEnv("TENANT_ID", "default"),
		JWTSecret:    flowcore.GetEnv("JWT_SECRET", ""),
		RealtimePort: flowcore.GetEnv("REALTIME_PORT", ":8081"),
		Mode:         flowcore.GetEnv("RUN_MODE", "prod"),
	}
}
