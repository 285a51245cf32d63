package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
)

// InitLogger configures logrus output. When LOG_FILE is set, logs go to the
// file and stdout; otherwise warnings and above go to stderr and the rest
// to stdout.
func InitLogger() {
	logFile := os.Getenv("LOG_FILE")
	if logFile != "" {
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Printf("Failed to create log directory: %v\n", err)
			logFile = ""
		} else {
			file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
				logFile = ""
			} else {
				log.SetOutput(io.MultiWriter(file, os.Stdout))
			}
		}
	}

	if logFile == "" {
		log.SetOutput(io.Discard)

		log.AddHook(&writer.Hook{
			Writer: os.Stderr,
			LogLevels: []log.Level{
				log.PanicLevel,
				log.FatalLevel,
				log.ErrorLevel,
				log.WarnLevel,
			},
		})
		log.AddHook(&writer.Hook{
			Writer: os.Stdout,
			LogLevels: []log.Level{
				log.InfoLevel,
				log.DebugLevel,
			},
		})
	}
}
