package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Store  StoreConfig
	Backup BackupConfig
	Log    LogConfig
	Export ExportConfig
}

// StoreConfig locates the embedded store file.
type StoreConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// BackupConfig controls pre-migration file backups.
type BackupConfig struct {
	Dir  string
	Keep int
}

type LogConfig struct {
	Level  string
	Format string
}

// ExportConfig sets where rendered reports are written.
type ExportConfig struct {
	Dir string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Store = StoreConfig{
		Path:        v.GetString("STORE_PATH"),
		BusyTimeout: parseDuration(v.GetString("STORE_BUSY_TIMEOUT"), 5*time.Second),
	}

	cfg.Backup = BackupConfig{
		Dir:  v.GetString("BACKUP_DIR"),
		Keep: v.GetInt("BACKUP_KEEP"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Export = ExportConfig{
		Dir: v.GetString("EXPORT_DIR"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("STORE_PATH", "acadplan.db")
	v.SetDefault("STORE_BUSY_TIMEOUT", "5s")

	v.SetDefault("BACKUP_DIR", "backups")
	v.SetDefault("BACKUP_KEEP", 10)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("EXPORT_DIR", "reports")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
