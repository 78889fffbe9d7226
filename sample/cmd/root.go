package cmd

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const envPrefix = "ACTORSDI_"

var rootCmd = &cobra.Command{
	Use:   "actorsdi",
	Short: "Dependency injected actors sample",
}

// Execute runs the sample CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// an optional .env file only fills in variables that are not set yet
	_ = godotenv.Load()
}

func envString(name string, fallback string) string {
	if value, ok := os.LookupEnv(envPrefix + name); ok && value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	value, err := strconv.Atoi(envString(name, ""))
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(envString(name, ""))
	if err != nil {
		return fallback
	}
	return value
}
