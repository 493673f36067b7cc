package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	// Per-IP limit on the auth routes.
	AuthRateLimit float64 `mapstructure:"auth_rate_limit"`
	AuthBurst     int     `mapstructure:"auth_burst"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // mongo or memory
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
	// Multi-document transactions need a replica set.
	Transactions bool `mapstructure:"transactions"`
}

type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	ExportURLExpiry time.Duration `mapstructure:"export_url_expiry"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// ScheduleConfig bounds recurrence expansion.
type ScheduleConfig struct {
	DefaultOccurrences int `mapstructure:"default_occurrences"`
	MaxOccurrences     int `mapstructure:"max_occurrences"`
}

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// LoadConfig reads configuration from an optional .env, a config file and
// environment variables, in increasing priority.
func LoadConfig(path string) (config Config, err error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.auth_rate_limit", 5)
	v.SetDefault("server.auth_burst", 10)
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "coach_app")
	v.SetDefault("database.transactions", true)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.export_url_expiry", "15m")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("schedule.default_occurrences", 52)
	v.SetDefault("schedule.max_occurrences", 365)

	var notFound viper.ConfigFileNotFoundError
	if err = v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return
	}
	if err = v.Unmarshal(&config); err != nil {
		return
	}
	return config, config.validate()
}

func (c Config) validate() error {
	switch c.Database.Driver {
	case DriverMongo, DriverMemory:
	default:
		return errors.New("database.driver must be mongo or memory")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}
	if c.Schedule.DefaultOccurrences <= 0 || c.Schedule.MaxOccurrences < c.Schedule.DefaultOccurrences {
		return errors.New("schedule occurrences must satisfy 0 < default <= max")
	}
	return nil
}
