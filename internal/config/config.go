package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DBPath           string
	LogLevel         string
	LogFormat        string
	ReminderInterval time.Duration
	BackupDir        string
	BackupKeep       int
}

// Load reads configuration from the environment, with an optional .env file
// layered underneath.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("CABAS_PORT", "8080"),
		DBPath:           getEnv("CABAS_DB_PATH", "cabas.db"),
		LogLevel:         getEnv("CABAS_LOG_LEVEL", "info"),
		LogFormat:        getEnv("CABAS_LOG_FORMAT", "text"),
		ReminderInterval: getEnvDuration("CABAS_REMINDER_INTERVAL", 30*time.Second),
		BackupDir:        getEnv("CABAS_BACKUP_DIR", "backups"),
		BackupKeep:       getEnvInt("CABAS_BACKUP_KEEP", 5),
	}
}

func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("invalid port %q: must be a number", c.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.ReminderInterval <= 0 {
		return fmt.Errorf("reminder interval must be positive, got %s", c.ReminderInterval)
	}
	if c.BackupDir == "" {
		return fmt.Errorf("backup directory must not be empty")
	}
	if c.BackupKeep < 1 {
		return fmt.Errorf("backup retention must keep at least one snapshot, got %d", c.BackupKeep)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
