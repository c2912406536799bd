package acetape

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger builds the logger the commands hand to their sessions.
// level is one of debug, info, warn, error.
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	var lvl, err = log.ParseLevel(level)
	if err != nil {
		return nil, &ConfigError{Field: "log level", Value: level, Reason: "must be debug, info, warn or error"}
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: false,
		Prefix:          "acetape",
	}), nil
}

func loggerOrDiscard(logger *log.Logger) *log.Logger {
	if logger != nil {
		return logger
	}

	return log.New(io.Discard)
}
