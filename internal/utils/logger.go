package utils

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger is a simple leveled logger for the application
type Logger struct {
	infoLog  *log.Logger
	warnLog  *log.Logger
	errorLog *log.Logger
}

// NewLogger creates a new logger writing INFO to stdout and WARN/ERROR to stderr
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, os.Stderr)
}

// NewLoggerTo creates a logger with explicit destinations
func NewLoggerTo(out, errOut io.Writer) *Logger {
	flags := log.Ldate | log.Ltime | log.Lshortfile
	return &Logger{
		infoLog:  log.New(out, "INFO: ", flags),
		warnLog:  log.New(errOut, "WARN: ", flags),
		errorLog: log.New(errOut, "ERROR: ", flags),
	}
}

// Info logs an informational message
func (l *Logger) Info(format string, v ...interface{}) {
	l.infoLog.Output(2, fmt.Sprintf(format, v...))
}

// Warn logs a recoverable problem
func (l *Logger) Warn(format string, v ...interface{}) {
	l.warnLog.Output(2, fmt.Sprintf(format, v...))
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.errorLog.Output(2, fmt.Sprintf(format, v...))
}
