package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the bloglist server.
type Config struct {
	Env        string
	ServerPort int
	LogLevel   string

	// TestingEnabled mounts the /api/testing routes used by the browser
	// test suite to reset fixture state. Never enable in production.
	TestingEnabled bool

	Database DatabaseConfig
	MQ       MQConfig
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// MQConfig selects and configures the mutation event backend.
// Driver is one of "rabbitmq", "pubsub", or empty to disable publishing.
type MQConfig struct {
	Driver  string
	Channel string

	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

// RabbitMQConfig holds RabbitMQ publisher settings.
type RabbitMQConfig struct {
	URL          string
	QueueDurable bool
}

// PubSubConfig holds Google Cloud Pub/Sub publisher settings.
type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

// Load reads configuration from the environment, falling back to defaults.
// In development a .env file is read first if present.
func Load() Config {
	if os.Getenv("ENV") == "development" {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_PORT", 3003)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TESTING_ENABLED", false)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "bloglist")
	v.SetDefault("DB_PASSWORD", "bloglist")
	v.SetDefault("DB_NAME", "bloglist")
	v.SetDefault("DB_USE_SSL", false)

	v.SetDefault("MQ_DRIVER", "")
	v.SetDefault("MQ_CHANNEL", "blog-events")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE_DURABLE", true)
	v.SetDefault("PUBSUB_PROJECT_ID", "")
	v.SetDefault("PUBSUB_CREDENTIALS_FILE", "")

	return Config{
		Env:            v.GetString("ENV"),
		ServerPort:     v.GetInt("SERVER_PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		TestingEnabled: v.GetBool("TESTING_ENABLED"),
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			UseSSL:   v.GetBool("DB_USE_SSL"),
		},
		MQ: MQConfig{
			Driver:  v.GetString("MQ_DRIVER"),
			Channel: v.GetString("MQ_CHANNEL"),
			RabbitMQ: RabbitMQConfig{
				URL:          v.GetString("RABBITMQ_URL"),
				QueueDurable: v.GetBool("RABBITMQ_QUEUE_DURABLE"),
			},
			PubSub: PubSubConfig{
				ProjectID:       v.GetString("PUBSUB_PROJECT_ID"),
				CredentialsFile: v.GetString("PUBSUB_CREDENTIALS_FILE"),
			},
		},
	}
}
