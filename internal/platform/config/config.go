package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool

	// Admin session config
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	AdminEmail        string
	AdminPasswordHash string // bcrypt hash of the admin password

	// Content store (pinning service) config
	PinAPIURL      string
	PinAPIKey      string
	PinAPISecret   string
	IPFSGateways   []string
	GatewayTimeout time.Duration

	// Local storage
	DataDir string

	// Secondary-currency grant for newly seen accounts
	DefaultSecondaryGrant int64
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "carbon-ledger-app")
	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("ADMIN_PASSWORD_HASH", "")
	viper.SetDefault("PIN_API_URL", "")
	viper.SetDefault("PIN_API_KEY", "")
	viper.SetDefault("PIN_API_SECRET", "")
	viper.SetDefault("IPFS_GATEWAYS", "https://ipfs.io,https://cloudflare-ipfs.com,https://gateway.pinata.cloud")
	viper.SetDefault("GATEWAY_TIMEOUT", "8s")
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("DEFAULT_SECONDARY_GRANT", 100)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		if jwtExpiryStr != "" {
			log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
		}
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "carbon-ledger-app"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	cfg.AdminEmail = strings.ToLower(strings.TrimSpace(viper.GetString("ADMIN_EMAIL")))
	cfg.AdminPasswordHash = viper.GetString("ADMIN_PASSWORD_HASH")
	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		log.Println("Warning: ADMIN_EMAIL / ADMIN_PASSWORD_HASH not set. Admin login will not function.")
	}

	cfg.PinAPIURL = viper.GetString("PIN_API_URL")
	cfg.PinAPIKey = viper.GetString("PIN_API_KEY")
	cfg.PinAPISecret = viper.GetString("PIN_API_SECRET")
	if cfg.PinAPIURL == "" {
		log.Println("Warning: PIN_API_URL not set. Falling back to the local content store.")
	}

	gatewaysStr := viper.GetString("IPFS_GATEWAYS")
	for _, gw := range strings.Split(gatewaysStr, ",") {
		gw = strings.TrimSpace(strings.TrimSuffix(gw, "/"))
		if gw != "" {
			cfg.IPFSGateways = append(cfg.IPFSGateways, gw)
		}
	}

	gatewayTimeoutStr := viper.GetString("GATEWAY_TIMEOUT")
	gatewayTimeout, err := time.ParseDuration(gatewayTimeoutStr)
	if err != nil {
		gatewayTimeout = 8 * time.Second
		if gatewayTimeoutStr != "" {
			log.Printf("Warning: Invalid value for GATEWAY_TIMEOUT ('%s'). Defaulting to %s.\n", gatewayTimeoutStr, gatewayTimeout.String())
		}
	}
	cfg.GatewayTimeout = gatewayTimeout

	cfg.DataDir = viper.GetString("DATA_DIR")
	cfg.DefaultSecondaryGrant = viper.GetInt64("DEFAULT_SECONDARY_GRANT")

	return cfg, nil
}
