package store

import "os"

const (
	pathEnvKey  = "STORE_PATH"
	defaultPath = "donnees_capteurs.json"
)

// PathFromEnv returns the configured document path, defaulting to the
// historical file name so existing documents keep working.
func PathFromEnv() string {
	if path := os.Getenv(pathEnvKey); path != "" {
		return path
	}
	return defaultPath
}
