package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/vote-tally/apperr"
	"github.com/danielhkuo/vote-tally/auth"
)

const (
	DefaultPort          = 3318
	DefaultDatabaseType  = "sqlite"
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin6108"
	DefaultRefresh       = 30 * time.Second
)

type Config struct {
	Port            int
	DatabaseURL     string
	DatabaseType    string
	ChangefeedURL   string
	AdminUsername   string
	AdminPassword   string
	AdminHash       string
	RefreshInterval time.Duration
}

// ParseFlags reads flags, then .env, then the environment. Flags win.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("vote-tally", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.ChangefeedURL, "changefeed", "", "Redis URL for change notifications")
	fs.StringVar(&cfg.AdminUsername, "admin-user", "", "Admin username (prefer env)")
	fs.StringVar(&cfg.AdminPassword, "admin-password", "", "Admin password (prefer env)")
	fs.DurationVar(&cfg.RefreshInterval, "refresh", 0, "Live view full refresh interval")
	fs.StringVar(&envFile, "env", ".env", "Optional dotenv file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, &apperr.ConfigError{Key: "env", Message: err.Error()}
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil || port <= 0 {
				return Config{}, &apperr.ConfigError{Key: "PORT", Message: "invalid port " + strconv.Quote(portStr)}
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	// Both store endpoints are required.
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, &apperr.ConfigError{Key: "DATABASE_URL", Message: "required (use -d or DATABASE_URL env)"}
	}
	if cfg.ChangefeedURL == "" {
		cfg.ChangefeedURL = os.Getenv("CHANGEFEED_URL")
	}
	if cfg.ChangefeedURL == "" {
		return Config{}, &apperr.ConfigError{Key: "CHANGEFEED_URL", Message: "required (use -changefeed or CHANGEFEED_URL env)"}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envOr("DATABASE_TYPE", DefaultDatabaseType)
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, &apperr.ConfigError{Key: "DATABASE_TYPE", Message: "must be sqlite or postgres"}
	}

	if cfg.AdminUsername == "" {
		cfg.AdminUsername = envOr("ADMIN_USERNAME", DefaultAdminUsername)
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = envOr("ADMIN_PASSWORD", DefaultAdminPassword)
	}
	// A bcrypt hash, when given, takes precedence over the plain password.
	cfg.AdminHash = os.Getenv("ADMIN_PASSWORD_HASH")
	if cfg.AdminHash != "" && !auth.ValidHash(cfg.AdminHash) {
		return Config{}, &apperr.ConfigError{Key: "ADMIN_PASSWORD_HASH", Message: "not a bcrypt hash"}
	}

	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = DefaultRefresh
		if s := os.Getenv("REFRESH_INTERVAL"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil || d <= 0 {
				return Config{}, &apperr.ConfigError{Key: "REFRESH_INTERVAL", Message: "invalid duration " + strconv.Quote(s)}
			}
			cfg.RefreshInterval = d
		}
	}
	if cfg.RefreshInterval < time.Second {
		return Config{}, &apperr.ConfigError{Key: "REFRESH_INTERVAL", Message: "must be at least 1s"}
	}

	return cfg, nil
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is fine.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
