package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	config     *Config
	configOnce sync.Once
)

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string

	// Database
	DBDriver        string // "mysql" or "sqlite"
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBSQLitePath    string
	DBMigrationMode string // "auto" (default) or "drop" to rebuild every table
	DBQueryTimeout  time.Duration
	DBLogLevel      string

	// Server
	ServerPort      string
	CORSAllowOrigin string

	// Redis
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisDB       int
	RedisPassword string

	// MQTT
	MQTTEnabled       bool
	MQTTBrokerURL     string // e.g. tcp://broker.example.com:1883
	MQTTClientID      string
	MQTTUsername      string
	MQTTPassword      string
	MQTTQoS           int // 0, 1 or 2
	MQTTRetained      bool
	MQTTSensorTopic   string
	MQTTAlertTopic    string
	MQTTLocationTopic string

	// JWT Authentication
	JWTSecretKey   string
	JWTExpiryHours int

	// Default admin account created on first start
	DefaultAdminUsername string
	DefaultAdminEmail    string
	DefaultAdminPassword string

	// Reverse geocoding
	GeocoderEnabled  bool
	GeocoderURL      string
	GeocoderLanguage string
	GeocoderTimeout  time.Duration

	// Sensor ingress rate limiting (requests per second per IP)
	SensorRateLimit float64
	SensorRateBurst int

	// Logging
	LogLevel string
	LogDir   string
	LogJSON  bool
}

// LoadConfig loads config from environment variables based on ENV_TYPE
func LoadConfig() *Config {
	envType := getEnv("ENV_TYPE", "LOCAL")
	prefix := ""

	switch strings.ToUpper(envType) {
	case "LOCAL":
		prefix = "LOCAL_"
	case "SERVER":
		prefix = "SERVER_"
	default:
		fmt.Printf("Warning: Unknown ENV_TYPE '%s', defaulting to LOCAL environment\n", envType)
		prefix = "LOCAL_"
		envType = "LOCAL"
	}

	cfg := &Config{
		EnvType: strings.ToUpper(envType),

		DBDriver:        strings.ToLower(getEnv(prefix+"DB_DRIVER", getEnv("DB_DRIVER", "sqlite"))),
		DBSQLitePath:    getEnv(prefix+"DB_SQLITE_PATH", getEnv("DB_SQLITE_PATH", "fire_alert.db")),
		DBMigrationMode: getEnv(prefix+"DB_MIGRATION_MODE", getEnv("DB_MIGRATION_MODE", "auto")),
		DBQueryTimeout:  getEnvAsDuration("DB_QUERY_TIMEOUT", 5*time.Second),
		DBLogLevel:      getEnv("DB_LOG_LEVEL", "warn"),

		ServerPort:      getEnv(prefix+"SERVER_PORT", getEnv("SERVER_PORT", "5000")),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),

		RedisEnabled:  getEnvAsBool("REDIS_ENABLED", false),
		RedisHost:     getEnv(prefix+"REDIS_HOST", getEnv("REDIS_HOST", "localhost")),
		RedisPort:     getEnv(prefix+"REDIS_PORT", getEnv("REDIS_PORT", "6379")),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		MQTTEnabled:       getEnvAsBool("MQTT_ENABLED", false),
		MQTTBrokerURL:     getEnv("MQTT_BROKER_URL", "tcp://localhost:1883"),
		MQTTClientID:      getEnv("MQTT_CLIENT_ID", "fire_alert_server"),
		MQTTUsername:      getEnv("MQTT_USERNAME", ""),
		MQTTPassword:      getEnv("MQTT_PASSWORD", ""),
		MQTTQoS:           getEnvAsInt("MQTT_QOS", 1),
		MQTTRetained:      getEnvAsBool("MQTT_RETAINED", false),
		MQTTSensorTopic:   getEnv("MQTT_SENSOR_TOPIC", "fire/sensor/status"),
		MQTTAlertTopic:    getEnv("MQTT_ALERT_TOPIC", "fire/alert"),
		MQTTLocationTopic: getEnv("MQTT_LOCATION_TOPIC", "fire/location"),

		JWTSecretKey:   getEnv("JWT_SECRET_KEY", "fire-alert-secret-key-change-in-production"),
		JWTExpiryHours: getEnvAsInt("JWT_EXPIRY_HOURS", 24),

		DefaultAdminUsername: getEnv("DEFAULT_ADMIN_USERNAME", "Admin"),
		DefaultAdminEmail:    getEnv("DEFAULT_ADMIN_EMAIL", "admin@fire.com"),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin123"),

		GeocoderEnabled:  getEnvAsBool("GEOCODER_ENABLED", false),
		GeocoderURL:      getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderLanguage: getEnv("GEOCODER_LANGUAGE", "id"),
		GeocoderTimeout:  getEnvAsDuration("GEOCODER_TIMEOUT", 5*time.Second),

		SensorRateLimit: getEnvAsFloat("SENSOR_RATE_LIMIT", 5),
		SensorRateBurst: getEnvAsInt("SENSOR_RATE_BURST", 10),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogDir:   getEnv("LOG_DIR", "logs"),
		LogJSON:  getEnvAsBool("LOG_JSON", false),
	}

	if cfg.DBDriver == "mysql" {
		cfg.DBHost = getEnvRequired(prefix + "DB_HOST")
		cfg.DBUser = getEnvRequired(prefix + "DB_USER")
		cfg.DBPassword = getEnvRequired(prefix + "DB_PASSWORD")
		cfg.DBName = getEnvRequired(prefix + "DB_NAME")
		cfg.DBPort = getEnv(prefix+"DB_PORT", "3306")
	}

	// a production deployment must never run with the built-in signing key
	if cfg.EnvType == "SERVER" {
		cfg.JWTSecretKey = getEnvRequired("JWT_SECRET_KEY")
	}

	return cfg
}

// GetConfig returns the application configuration as a singleton
func GetConfig() *Config {
	configOnce.Do(func() {
		config = LoadConfig()
	})
	return config
}

// GetDSN returns the database connection string for the configured driver
func (c *Config) GetDSN() string {
	if c.DBDriver == "sqlite" {
		return c.DBSQLitePath
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local&allowNativePasswords=true"
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as boolean with default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// accepts Go duration strings ("5s") or a plain number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// Helper function for variables that must be provided
func getEnvRequired(key string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	panic(fmt.Sprintf("Required environment variable %s is not set", key))
}
