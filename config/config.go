package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Environment   string
	PublicBaseURL string

	// Payment gateway configuration
	GatewayBaseURL  string
	MerchantID      string
	GatewayID       string
	GatewaySecret   string
	GatewayCurrency string
	GatewayLanguage string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	PubNubUUID         string
	BackofficeChannel  string

	// Notification configuration
	AdminEmail      string
	FailureRedirect string
	SuccessRedirect string

	// Card configuration
	TicketMaxQuantity int
	MealRedeemMax     int
	MealPrice         int
	MealCardValidity  time.Duration
	StaffPINHash      string

	// Rate limiting
	CheckoutRateLimit  int
	CheckoutRateWindow time.Duration

	// Monitoring
	EnableMetrics bool
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Environment:   getEnv("ENVIRONMENT", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8090"),

		// Gateway
		GatewayBaseURL:  getEnv("GATEWAY_BASE_URL", ""),
		MerchantID:      getEnv("GATEWAY_MERCHANT_ID", ""),
		GatewayID:       getEnv("GATEWAY_ID", "16"),
		GatewaySecret:   getEnv("GATEWAY_SECRET", ""),
		GatewayCurrency: getEnv("GATEWAY_CURRENCY", "ISK"),
		GatewayLanguage: getEnv("GATEWAY_LANGUAGE", "IS"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubUUID:         getEnv("PUBNUB_UUID", "whitelotus-server"),
		BackofficeChannel:  getEnv("BACKOFFICE_CHANNEL", "backoffice"),

		// Notifications
		AdminEmail:      getEnv("ADMIN_EMAIL", ""),
		FailureRedirect: getEnv("PAYMENT_FAILURE_REDIRECT", "/payment-failed"),
		SuccessRedirect: getEnv("PAYMENT_SUCCESS_REDIRECT", "/payment-success"),

		// Cards
		TicketMaxQuantity: getEnvAsInt("TICKET_MAX_QUANTITY", 10),
		MealRedeemMax:     getEnvAsInt("MEAL_REDEEM_MAX", 5),
		MealPrice:         getEnvAsInt("MEAL_PRICE", 2990),
		MealCardValidity:  getEnvAsDuration("MEAL_CARD_VALIDITY", "8760h"),
		StaffPINHash:      getEnv("STAFF_PIN_HASH", ""),

		// Rate limiting
		CheckoutRateLimit:  getEnvAsInt("CHECKOUT_RATE_LIMIT", 10),
		CheckoutRateWindow: getEnvAsDuration("CHECKOUT_RATE_WINDOW", "1m"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
