// Package env loads configuration from the process environment, with
// an optional .env file for development.
package env

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Load reads a .env file when one is present. Missing files are fine;
// deployments set the environment directly.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set directly.")
	}
}

// MustGet returns the value of a required environment variable and
// exits when it is unset.
func MustGet(key string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		log.Fatalf("Environment variable %s not set", key)
	}
	return val
}

// GetDefault returns the variable's value, or fallback when unset or
// empty.
func GetDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
