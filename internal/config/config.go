package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"riverroom-server/internal/util"
)

// Config provides configuration for Riverroom
type Config struct {
	loaded         bool
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	JWT            struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	}
	RecaptchaSecret string `yaml:"recaptchaSecret" envconfig:"recaptcha_secret"`
	// TurnTimeoutSeconds is how long a player has to act before their default
	// action is played. Zero disables the turn clock.
	TurnTimeoutSeconds int `yaml:"turnTimeoutSeconds" envconfig:"turn_timeout_seconds"`
	// StartingBankroll seeds the wallet of newly created players
	StartingBankroll int `yaml:"startingBankroll" envconfig:"starting_bankroll"`
	Log              struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}
}

// DefaultConfig returns a configuration with sane local-development values
func DefaultConfig() Config {
	cfg := Config{
		PGDSN:              "postgres://postgres@localhost:5432/postgres?sslmode=disable",
		MigrationsPath:     "./sql",
		TurnTimeoutSeconds: 45,
		StartingBankroll:   10000,
	}

	cfg.JWT.PublicKey = "jwt/public.pem"
	cfg.JWT.PrivateKey = "jwt/private.key"
	return cfg
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration. A missing config file is not an error;
// the defaults plus environment overrides apply instead.
func Load() error {
	configFile := util.Getenv("RR_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}

		config = DefaultConfig()
		if err := envconfig.Process("rr", &config); err != nil {
			return err
		}

		config.loaded = true
		return nil
	}
	defer file.Close()

	config = Config{}
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return err
	}

	if err := envconfig.Process("rr", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}
