package config

import (
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	LOG_LEVEL      = "info" // One of: trace, debug, info, warn, error
	WORKER_COUNT   = 4      // Number of parallel pipeline workers
	QUEUE_SIZE     = 64     // Buffer size for pipeline queues
	THUMB_SIZE     = 720    // Longest side of generated thumbnails, in pixels
	JPEG_QUALITY   = 90     // Quality used when encoding JPEG output
	LOG_FLUSH_SECS = 5      // How long to wait for the log queue to drain on shutdown
)

func init() {
	readEnvString("LOG_LEVEL", &LOG_LEVEL)
	readEnvInt("WORKER_COUNT", &WORKER_COUNT)
	readEnvInt("QUEUE_SIZE", &QUEUE_SIZE)
	readEnvInt("THUMB_SIZE", &THUMB_SIZE)
	readEnvInt("JPEG_QUALITY", &JPEG_QUALITY)
	readEnvInt("LOG_FLUSH_SECS", &LOG_FLUSH_SECS)
}

// ApplyLogLevel configures the process-wide logger from LOG_LEVEL.
// Unknown values fall back to info.
func ApplyLogLevel() {
	level, err := log.ParseLevel(strings.ToLower(LOG_LEVEL))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = f
}
