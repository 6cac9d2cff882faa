package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/mkadlec/ledgersync/internal/db"
)

// Config collects everything the pipeline needs at startup: the canonical
// store plus the filesystem conventions the locator consumes.
type Config struct {
	DB          db.Config
	ListenAddr  string
	UploadsRoot string
	BackupRoot  string
	LegacyExt   string
	ExportDir   string
}

// DefaultConfig returns the development defaults.
func DefaultConfig() Config {
	return Config{
		DB:          db.DefaultConfig(),
		ListenAddr:  ":8080",
		UploadsRoot: "./data/uploads",
		BackupRoot:  "./data/backups",
		LegacyExt:   ".mdb",
		ExportDir:   "./data/exports",
	}
}

// Load reads config.yaml from configPath with environment overrides, e.g.
// SYNC_DATABASE_HOST or SYNC_PATHS_UPLOADS_ROOT.
func Load(configPath string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("SYNC")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.listen_addr")
	v.BindEnv("paths.uploads_root")
	v.BindEnv("paths.backup_root")
	v.BindEnv("paths.legacy_ext")
	v.BindEnv("paths.export_dir")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Use defaults + env.
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("database.host") {
		cfg.DB.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.DB.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.DB.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.DB.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.DB.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.DB.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("server.listen_addr") {
		cfg.ListenAddr = v.GetString("server.listen_addr")
	}
	if v.IsSet("paths.uploads_root") {
		cfg.UploadsRoot = v.GetString("paths.uploads_root")
	}
	if v.IsSet("paths.backup_root") {
		cfg.BackupRoot = v.GetString("paths.backup_root")
	}
	if v.IsSet("paths.legacy_ext") {
		cfg.LegacyExt = v.GetString("paths.legacy_ext")
	}
	if v.IsSet("paths.export_dir") {
		cfg.ExportDir = v.GetString("paths.export_dir")
	}

	return cfg, nil
}
