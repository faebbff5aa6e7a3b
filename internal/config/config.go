package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/opsim/engine/internal/model/core"
)

// MemoryConfig holds in-memory storage backend settings
type MemoryConfig struct {
	OutputDir string `json:"outputDir" mapstructure:"outputDir"`
}

// SqliteConfig holds SQLite storage backend settings
type SqliteConfig struct {
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// StorageConfig selects and configures the recording storage backend
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	Sqlite SqliteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./opsimlogs")

	viper.SetDefault("engine.tickSeconds", 1.0)
	viper.SetDefault("engine.seed", int64(1))
	viper.SetDefault("engine.classDbPath", "./classes.json")

	viper.SetDefault("doctrine.aircraftAttackHostile", true)
	viper.SetDefault("doctrine.aircraftChaseHostile", true)
	viper.SetDefault("doctrine.aircraftRtbWhenOutOfRange", true)
	viper.SetDefault("doctrine.aircraftRtbWhenStrikeComplete", true)
	viper.SetDefault("doctrine.samAttackHostile", true)
	viper.SetDefault("doctrine.shipAttackHostile", true)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.sqlite.dumpPath", "./recordings/opsim.db")
	viper.SetDefault("storage.sqlite.dumpInterval", "30s")

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "opsim")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "opsim-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("relay.enabled", true)
	viper.SetDefault("relay.listenAddr", ":8723")

	viper.SetConfigName("opsim.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// Storage assembles the storage configuration from viper state.
func Storage() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir: viper.GetString("storage.memory.outputDir"),
		},
		Sqlite: SqliteConfig{
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
	}
}

// DoctrineDefaults assembles the baseline side doctrine from viper state.
func DoctrineDefaults() core.Doctrine {
	return core.Doctrine{
		AircraftAttackHostile:         viper.GetBool("doctrine.aircraftAttackHostile"),
		AircraftChaseHostile:          viper.GetBool("doctrine.aircraftChaseHostile"),
		AircraftRTBWhenOutOfRange:     viper.GetBool("doctrine.aircraftRtbWhenOutOfRange"),
		AircraftRTBWhenStrikeComplete: viper.GetBool("doctrine.aircraftRtbWhenStrikeComplete"),
		SAMAttackHostile:              viper.GetBool("doctrine.samAttackHostile"),
		ShipAttackHostile:             viper.GetBool("doctrine.shipAttackHostile"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
