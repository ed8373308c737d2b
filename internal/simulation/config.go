package simulation

import (
	"log"
	"os"
	"strconv"
	"time"
)

const (
	intervalEnvKey  = "SIMULATION_INTERVAL"
	autostartEnvKey = "SIMULATION_AUTOSTART"
)

// IntervalFromEnv reads the cycle interval from the environment and falls
// back to the default when unset or invalid.
func IntervalFromEnv() time.Duration {
	return IntervalFromString(os.Getenv(intervalEnvKey))
}

// IntervalFromString parses a duration string with sensible fallback.
func IntervalFromString(raw string) time.Duration {
	if raw == "" {
		return defaultCycleInterval
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid %s value %q: %v, using default %s", intervalEnvKey, raw, err, defaultCycleInterval)
		return defaultCycleInterval
	}
	if dur <= 0 {
		log.Printf("non-positive %s value %q, using default %s", intervalEnvKey, raw, defaultCycleInterval)
		return defaultCycleInterval
	}
	return dur
}

// AutostartFromEnv reports whether collection cycles should begin as soon
// as the process starts.
func AutostartFromEnv() bool {
	raw := os.Getenv(autostartEnvKey)
	if raw == "" {
		return false
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("invalid %s value %q: %v, autostart disabled", autostartEnvKey, raw, err)
		return false
	}
	return enabled
}
