// Package logger provides leveled, named loggers for the server subsystems
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
)

// LogLevel controls which messages a logger emits
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

var levelColors = map[LogLevel]*color.Color{
	DEBUG: color.New(color.FgCyan),
	INFO:  color.New(color.FgGreen),
	WARN:  color.New(color.FgYellow),
	ERROR: color.New(color.FgRed),
	FATAL: color.New(color.FgRed, color.Bold),
}

var (
	globalLevel   = INFO
	globalLevelMu sync.RWMutex
)

// SetGlobalLogLevel sets the minimum level for all loggers
func SetGlobalLogLevel(level LogLevel) {
	globalLevelMu.Lock()
	globalLevel = level
	globalLevelMu.Unlock()
}

// ParseLevel converts a level name to a LogLevel, defaulting to INFO
func ParseLevel(name string) LogLevel {
	for level, n := range levelNames {
		if n == name {
			return level
		}
	}
	return INFO
}

// Logger is a named logger writing to the console and optionally a file
type Logger struct {
	name string
	mu   sync.Mutex
	file *os.File
}

// Named loggers for the server subsystems
var (
	Server = New("SERVER")
	Game   = New("GAME")
	Board  = New("BOARD")
	Client = New("CLIENT")
)

// New creates a named logger
func New(name string) *Logger {
	return &Logger{name: name}
}

// SetFile mirrors log output to the given file path
func (l *Logger) SetFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.mu.Lock()
	if l.file != nil {
		l.file.Close()
	}
	l.file = f
	l.mu.Unlock()
	return nil
}

// InitializeFileLogging points every named logger at a dated file under dir
func InitializeFileLogging(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	for _, l := range []*Logger{Server, Game, Board, Client} {
		if err := l.SetFile(path); err != nil {
			return err
		}
	}
	return nil
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	globalLevelMu.RLock()
	min := globalLevel
	globalLevelMu.RUnlock()
	if level < min {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	tag := levelColors[level].Sprintf("[%s]", levelNames[level])

	l.mu.Lock()
	fmt.Fprintf(os.Stdout, "%s %s [%s] %s\n", timestamp, tag, l.name, message)
	if l.file != nil {
		fmt.Fprintf(l.file, "%s [%s] [%s] %s\n", timestamp, levelNames[level], l.name, message)
	}
	l.mu.Unlock()
}

// Debug logs at DEBUG level
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info logs at INFO level
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn logs at WARN level
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error logs at ERROR level
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

// Fatal logs at FATAL level and exits
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(FATAL, format, args...)
	os.Exit(1)
}
