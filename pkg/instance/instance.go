package instance

import "os"

// GetID names this process in logs: the dyno when running on a platform that
// sets one, otherwise the host name.
func GetID() string {
	for _, key := range []string{"DYNO", "HOSTNAME"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
