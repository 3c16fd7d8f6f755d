package logger

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

type Logger interface {
	Info(action, message string, details map[string]interface{})
	Debug(action, message string, details map[string]interface{})
	Error(action, message string, details map[string]interface{}, err error)
}

type jsonLogger struct {
	service  string
	hostname string
	out      io.Writer
	mu       sync.Mutex
}

func New(service string) Logger {
	hostname, _ := os.Hostname()
	return &jsonLogger{
		service:  service,
		hostname: hostname,
		out:      os.Stdout,
	}
}

// NewWithWriter exists for tests that need to capture output.
func NewWithWriter(service string, out io.Writer) Logger {
	hostname, _ := os.Hostname()
	return &jsonLogger{
		service:  service,
		hostname: hostname,
		out:      out,
	}
}

func (l *jsonLogger) Info(action, message string, details map[string]interface{}) {
	l.log("INFO", action, message, details, nil)
}

func (l *jsonLogger) Debug(action, message string, details map[string]interface{}) {
	l.log("DEBUG", action, message, details, nil)
}

func (l *jsonLogger) Error(action, message string, details map[string]interface{}, err error) {
	l.log("ERROR", action, message, details, err)
}

func (l *jsonLogger) log(level, action, message string, details map[string]interface{}, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Service:   l.service,
		Hostname:  l.hostname,
		Action:    action,
		Message:   message,
		Details:   details,
	}

	if err != nil {
		entry.Error = &ErrorInfo{Msg: err.Error()}
	}

	json.NewEncoder(l.out).Encode(entry)
}
