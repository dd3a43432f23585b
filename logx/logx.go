package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

const (
	defaultLogFile   = "./logs/cryptocurrency.log"
	defaultMaxSizeMB = 100
	defaultMaxAgeDay = 7
)

var (
	mu     sync.RWMutex
	logger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)
)

// InitWithOutput redirects every subsequent log line to w.
func InitWithOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds)
}

// NewFileWriter builds the rotating file writer used by the node. Settings come from
// LOGFILE, LOGFILE_MAX_SIZE_MB and LOGFILE_MAX_AGE_DAYS.
func NewFileWriter() (*lumberjack.Logger, error) {
	maxSize, err := envInt("LOGFILE_MAX_SIZE_MB", defaultMaxSizeMB)
	if err != nil {
		return nil, err
	}
	maxAge, err := envInt("LOGFILE_MAX_AGE_DAYS", defaultMaxAgeDay)
	if err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename: getLogFilename(),
		MaxSize:  maxSize, // megabytes
		MaxAge:   maxAge,  // days
	}, nil
}

func getLogFilename() string {
	if logFile := os.Getenv("LOGFILE"); logFile != "" {
		return "./logs/" + logFile
	}
	return defaultLogFile
}

func envInt(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", name, err)
	}
	return v, nil
}

func output(color, level, category string, content ...interface{}) {
	message := fmt.Sprint(content...)
	coloredCategory := fmt.Sprintf("%s[%s][%s]%s", color, level, category, ColorReset)
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Printf("%s: %s", coloredCategory, message)
}

func Info(category string, content ...interface{}) {
	output(ColorGreen, "INFO", category, content...)
}

func Error(category string, content ...interface{}) {
	output(ColorRed, "ERROR", category, content...)
}

func Warn(category string, content ...interface{}) {
	output(ColorYellow, "WARN", category, content...)
}

func Debug(category string, content ...interface{}) {
	output(ColorBlue, "DEBUG", category, content...)
}

// Errorf logs an error message and returns a formatted error
func Errorf(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	Error("ERROR", err.Error())
	return err
}
