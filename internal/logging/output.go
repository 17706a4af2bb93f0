package logging

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogFileMegabytes = 50
	maxLogFileBackups   = 5
	maxLogFileAgeDays   = 14
)

// NewOutput returns the log sink for the application. Logs always go to stdout. When path is set they are also
// written to a size-rotated file. Close the returned closer on shutdown.
func NewOutput(stdout io.Writer, path string) (io.Writer, io.Closer) {
	if path == "" {
		return stdout, io.NopCloser(nil)
	}
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogFileMegabytes,
		MaxAge:     maxLogFileAgeDays,
		MaxBackups: maxLogFileBackups,
		LocalTime:  false,
		Compress:   true,
	}
	return io.MultiWriter(stdout, file), file
}
