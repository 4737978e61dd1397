package utils

import (
	"io"
	"log"
	"os"
)

// LoggerConfig controls InitLogger.
type LoggerConfig struct {
	// Format is "text" or "json"
	Format string
	// Output defaults to os.Stdout
	Output io.Writer
	// EnableColors colors the prefix on terminals
	EnableColors bool
}

// InitLogger builds the application logger.
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	prefix := "[ARNhub] "

	if cfg.Format == "json" {
		return log.New(cfg.Output, prefix, log.LstdFlags|log.LUTC|log.Lmsgprefix)
	}

	if cfg.EnableColors {
		prefix = "\033[36m" + prefix + "\033[0m"
	}
	return log.New(cfg.Output, prefix, log.LstdFlags|log.Lshortfile|log.LUTC)
}

// DiscardLogger is used by tests and tools that want no output.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
