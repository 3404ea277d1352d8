package pkg

import "os"

// Getenv returns the value of the environment variable key, or defaultValue
// when the variable is unset or empty.
func Getenv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}
