package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backend names accepted by --store / FEEDSMITH_STORE.
const (
	StoreMemory   = "memory"
	StoreFiles    = "files"
	StorePostgres = "postgres"
)

// Config holds the application configuration loaded from flags,
// environment variables, .env files, and an optional config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Catalog store
	StoreBackend string
	FilesPath    string
	DatabaseURL  string

	// Feed sources
	DelimitedFeed    string
	HierarchicalFeed string

	// HTTP server
	ListenAddr string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// command-line flags (applied later by cobra), environment variables,
// .env files, config file (~/.feedsmith.yaml), defaults.
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("feedsmith")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".feedsmith")
		}
	}

	// Missing config file is fine; flags and env cover everything.
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),

		ConfigFile: viper.ConfigFileUsed(),

		StoreBackend: viper.GetString("store"),
		FilesPath:    viper.GetString("files_path"),
		DatabaseURL:  viper.GetString("database_url"),

		DelimitedFeed:    viper.GetString("delimited_feed"),
		HierarchicalFeed: viper.GetString("hierarchical_feed"),

		ListenAddr: viper.GetString("listen_addr"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	// Defaults
	if config.StoreBackend == "" {
		config.StoreBackend = StoreMemory
	}
	if config.FilesPath == "" {
		config.FilesPath = "catalog.yaml"
	}
	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}

	return config, nil
}

// UpdateFromFlags applies parsed command flags. Flag values take
// precedence over config file and environment values.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default
// if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
