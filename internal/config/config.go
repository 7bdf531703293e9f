package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	Services ServicesConfig
}

type AppConfig struct {
	Name string
	Port string
	Env  string
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SearchPath      string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MigrationsPath  string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type StripeConfig struct {
	SecretKey string
	BaseURL   string
	Currency  string
}

// ServicesConfig holds the base URLs the gateway and checkout flow talk to.
type ServicesConfig struct {
	OrderURL   string
	UserURL    string
	ProductURL string
}

// Load reads configuration from the environment, optionally seeded from a
// .env file. defaultPort lets each binary pick its own well-known port when
// PORT is not set (order-service 8082, user-service 8081, product-service
// 8000, gateway 8080).
func Load(envFile, defaultPort string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	jwtTTL, err := time.ParseDuration(getEnv("JWT_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid JWT_TTL: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "electrozone"),
			Port: getEnv("PORT", defaultPort),
			Env:  getEnv("APP_ENV", "development"),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "electrozone"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			SearchPath:      getEnv("DB_SEARCH_PATH", "public"),
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: 30 * time.Minute,
			MigrationsPath:  getEnv("MIGRATIONS_PATH", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    jwtTTL,
		},
		Stripe: StripeConfig{
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			BaseURL:   getEnv("STRIPE_BASE_URL", "https://api.stripe.com"),
			Currency:  getEnv("STRIPE_CURRENCY", "usd"),
		},
		Services: ServicesConfig{
			OrderURL:   getEnv("ORDER_SERVICE_URL", "http://localhost:8082"),
			UserURL:    getEnv("USER_SERVICE_URL", "http://localhost:8081"),
			ProductURL: getEnv("PRODUCT_SERVICE_URL", "http://localhost:8000"),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}
