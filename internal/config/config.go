package config

import (
	"github.com/loadhive/service-shipment/pkg/config"
)

// ServiceConfig holds all configuration for the shipment service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	DBConfig      config.DatabaseConfig
	JWTConfig     config.JWTConfig
	KafkaConfig   config.KafkaConfig
	RedisConfig   config.RedisConfig
	RoutingConfig config.RoutingConfig
	CORSOrigins   []string
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("SHIPMENT")
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{
		Port:          config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:        config.GetAppEnv(v),
		DBConfig:      config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:     config.LoadJWTConfig(v),
		KafkaConfig:   config.LoadKafkaConfig(v),
		RedisConfig:   config.LoadRedisConfig(v),
		RoutingConfig: config.LoadRoutingConfig(v),
		CORSOrigins:   config.LoadCORSOrigins(v),
	}, nil
}
