// Package logging centralizes the pipeline's log output behind a
// single debug gate (config.DebugEnabled) over plain stdlib log.Printf.
package logging

import (
	"fmt"
	"log"

	"satreceiver/internal/config"
)

// Info logs an always-on informational line.
func Info(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// Warn logs an always-on warning line.
func Warn(format string, args ...interface{}) {
	log.Printf("[WARN] "+format, args...)
}

// Error logs an always-on error line.
func Error(format string, args ...interface{}) {
	log.Printf("[ERROR] "+format, args...)
}

// Debug logs only when config.DebugEnabled is set.
func Debug(format string, args ...interface{}) {
	if config.DebugEnabled {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// HexDump renders a payload as a space-separated hex byte string, for
// unknown-service debug logging.
func HexDump(b []byte) string {
	return fmt.Sprintf("% x", b)
}
