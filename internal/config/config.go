package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"megacrm-backend/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Store struct {
		Driver     string        `mapstructure:"driver"`
		XLSXPath   string        `mapstructure:"xlsx_path"`
		RetryDelay time.Duration `mapstructure:"retry_delay"`
	} `mapstructure:"store"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
		MaxConns int32  `mapstructure:"max_conns"`
	} `mapstructure:"database"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Cache struct {
		TTL         time.Duration `mapstructure:"ttl"`
		PaymentsTTL time.Duration `mapstructure:"payments_ttl"`
		Prefix      string        `mapstructure:"prefix"`
	} `mapstructure:"cache"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Auth struct {
		AdminPassword     string            `mapstructure:"admin_password"`
		AdminUnlock       time.Duration     `mapstructure:"admin_unlock"`
		PaymentsPassword  string            `mapstructure:"payments_password"`
		PaymentsByUser    map[string]string `mapstructure:"payments_by_user"`
		PaymentsUnlock    time.Duration     `mapstructure:"payments_unlock"`
		EmployeePasswords map[string]string `mapstructure:"employee_passwords"`
	} `mapstructure:"auth"`

	Branches []models.Branch `mapstructure:"branches"`

	Metrics struct {
		CollectInterval time.Duration `mapstructure:"collect_interval"`
	} `mapstructure:"metrics"`

	Backup struct {
		Enabled   bool          `mapstructure:"enabled"`
		Interval  time.Duration `mapstructure:"interval"`
		Endpoint  string        `mapstructure:"endpoint"`
		Region    string        `mapstructure:"region"`
		Bucket    string        `mapstructure:"bucket"`
		AccessKey string        `mapstructure:"access_key"`
		SecretKey string        `mapstructure:"secret_key"`
		Prefix    string        `mapstructure:"prefix"`
	} `mapstructure:"backup"`

	Timezone string `mapstructure:"timezone"`
}

// Load reads configs/config.yaml (optional), then applies environment overrides
func Load() *Config {
	return LoadFile("configs/config.yaml")
}

func LoadFile(path string) *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	applyEnv(&cfg)

	if cfg.JWT.Secret == "" {
		log.Printf("[Config] JWT_SECRET not set, using an insecure development secret")
		cfg.JWT.Secret = "megacrm-dev-secret"
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.xlsx_path", "data/megacrm.xlsx")
	v.SetDefault("store.retry_delay", 400*time.Millisecond)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "megacrm")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.payments_ttl", time.Minute)
	v.SetDefault("cache.prefix", "megacrm:")
	v.SetDefault("jwt.expiration_hours", 12)
	v.SetDefault("jwt.issuer", "megacrm-backend")
	v.SetDefault("auth.admin_password", "admin123")
	v.SetDefault("auth.admin_unlock", 30*time.Minute)
	v.SetDefault("auth.payments_password", "1234")
	v.SetDefault("auth.payments_unlock", 15*time.Minute)
	v.SetDefault("branches", []map[string]string{
		{"name": "Menzel Bourguiba", "code": "MB", "password": "MB_2025!"},
		{"name": "Bizerte", "code": "BZ", "password": "BZ_2025!"},
	})
	v.SetDefault("metrics.collect_interval", time.Minute)
	v.SetDefault("backup.interval", 6*time.Hour)
	v.SetDefault("backup.region", "auto")
	v.SetDefault("backup.prefix", "backups/")
	v.SetDefault("timezone", "Africa/Tunis")
}

func applyEnv(cfg *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if pass := os.Getenv("ADMIN_PASSWORD"); pass != "" {
		cfg.Auth.AdminPassword = pass
	}
	if pass := os.Getenv("PAYMENTS_PASSWORD"); pass != "" {
		cfg.Auth.PaymentsPassword = pass
	}
	if key := os.Getenv("S3_ACCESS_KEY"); key != "" {
		cfg.Backup.AccessKey = key
	}
	if key := os.Getenv("S3_SECRET_KEY"); key != "" {
		cfg.Backup.SecretKey = key
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.Backup.Endpoint = endpoint
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.Backup.Bucket = bucket
	}
}

// Branch looks up a configured branch by name or code
func (c *Config) Branch(nameOrCode string) (models.Branch, bool) {
	for _, b := range c.Branches {
		if strings.EqualFold(b.Name, nameOrCode) || strings.EqualFold(b.Code, nameOrCode) {
			return b, true
		}
	}
	return models.Branch{}, false
}

// PaymentsPasswordFor returns the per-user payments password, or the default
func (c *Config) PaymentsPasswordFor(employee string) string {
	if p := lookupUser(c.Auth.PaymentsByUser, employee); p != "" {
		return p
	}
	return c.Auth.PaymentsPassword
}

// EmployeePasswordFor returns the login password of an employee, empty when none is configured
func (c *Config) EmployeePasswordFor(employee string) string {
	return lookupUser(c.Auth.EmployeePasswords, employee)
}

// viper lower-cases map keys, so lookups fall back to the lower-cased name
func lookupUser(m map[string]string, employee string) string {
	if p, ok := m[employee]; ok {
		return p
	}
	return m[strings.ToLower(employee)]
}
