package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBPort         string
	DBMaxOpenConns int
	DBMaxIdleConns int

	AppPort string
	AppEnv  string

	// ServerURL is the public base URL the payment gateway calls back on.
	ServerURL string
	// ClientURL is the storefront the customer is redirected to after payment.
	ClientURL string

	SSLCommerzStoreID       string
	SSLCommerzStorePassword string
	SSLCommerzIsLive        bool
	GatewayTimeout          time.Duration

	StorageDisk      string
	StorageLocalRoot string
	StorageURL       string
	S3Bucket         string
	S3Region         string
	S3Key            string
	S3Secret         string
	S3Endpoint       string
	S3URL            string

	CORSAllowedOrigins []string
	JWTSecret          string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:         os.Getenv("DB_HOST"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  os.Getenv("APP_ENV"),

		ServerURL: strings.TrimRight(getEnv("SERVER_URL", "http://localhost:3000"), "/"),
		ClientURL: strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:5173"), "/"),

		SSLCommerzStoreID:       os.Getenv("SSLCZ_STORE_ID"),
		SSLCommerzStorePassword: os.Getenv("SSLCZ_STORE_PASSWORD"),
		SSLCommerzIsLive:        getEnvBool("SSLCZ_IS_LIVE", false),
		GatewayTimeout:          getEnvDuration("GATEWAY_TIMEOUT", 15*time.Second),

		StorageDisk:      getEnv("STORAGE_DISK", "local"),
		StorageLocalRoot: getEnv("STORAGE_LOCAL_ROOT", "im/images"),
		StorageURL:       os.Getenv("STORAGE_URL"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Region:         getEnv("S3_REGION", "us-east-1"),
		S3Key:            os.Getenv("S3_KEY"),
		S3Secret:         os.Getenv("S3_SECRET"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3URL:            os.Getenv("S3_URL"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		JWTSecret:          os.Getenv("JWT_SECRET"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	if cfg.ServerURL == cfg.ClientURL {
		log.Printf("warning: SERVER_URL and CLIENT_URL are both %s", cfg.ServerURL)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
