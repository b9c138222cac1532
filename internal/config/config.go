// Package config provides configuration for the commands using
// command-line flags, environment variables, and an optional JSON file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// DatabaseDSN holds the database connection string.
	DatabaseDSN string

	// BaseURL is the habit service address the client talks to.
	BaseURL string

	// TokenFile is where the client persists its bearer credential.
	TokenFile string

	// SampleSeed seeds the demo-mode sample generator. 0 means
	// time-based.
	SampleSeed int64

	// Config is the path to the config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.BaseURL, "url", "http://localhost:8080", "habit service base URL")
	flag.StringVar(&options.TokenFile, "token-file", "session.json", "path to the stored session credential")
	flag.Int64Var(&options.SampleSeed, "sample-seed", 0, "seed for demo sample data (0 = time-based)")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct
// containing the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if baseURL := os.Getenv("HABIT_SERVICE_URL"); baseURL != "" {
		options.BaseURL = baseURL
	}

	return options
}
