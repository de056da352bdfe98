// Package utils holds small ambient helpers shared by the CLI: log file
// setup and a non-fatal error logger, in the same shape the original tool
// used for its own log file.
package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
)

// InitializeAppLog redirects the standard logger to logPath, appending to
// any existing file. Callers that want log output on both the file and
// stderr should wrap the returned writer themselves; this matches the
// single-sink behavior the tool has always used.
func InitializeAppLog(logPath string) (*os.File, error) {
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", logPath, err)
	}
	log.SetOutput(logFile)
	log.Println("grubwatch started")
	return logFile, nil
}

// IfError logs err with its call site if err is non-nil. It's used where a
// failure shouldn't abort the watch loop but is worth a line in the log.
func IfError(err error, message string) {
	if err != nil {
		_, file, line, _ := runtime.Caller(1)
		log.Printf("%s:%d: %s: %v\n", filepath.Base(file), line, message, err)
	}
}
